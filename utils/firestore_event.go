package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"strings"

	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"

	"github.com/HSouheill/booking_notifier/models"
)

// ErrDocumentPath is returned when a document name does not belong to the watched collection.
var ErrDocumentPath = errors.New("document path does not match pattern")

var protojsonOptions = protojson.UnmarshalOptions{DiscardUnknown: true}

// Field numbers of google.events.cloud.firestore.v1.DocumentEventData
const (
	eventDataValueField      protowire.Number = 1
	eventDataOldValueField   protowire.Number = 2
	eventDataUpdateMaskField protowire.Number = 3
)

// DecodeDocumentEventData decodes the event payload in the encoding named by
// contentType: protobuf (Eventarc's default) or JSON.
func DecodeDocumentEventData(data []byte, contentType string) (*models.DocumentEventData, error) {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch mediaType {
	case "application/protobuf", "application/x-protobuf":
		return decodeProtoEventData(data)
	default:
		return decodeJSONEventData(data)
	}
}

func decodeJSONEventData(data []byte) (*models.DocumentEventData, error) {
	var raw struct {
		Value      json.RawMessage `json:"value"`
		OldValue   json.RawMessage `json:"oldValue"`
		UpdateMask json.RawMessage `json:"updateMask"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode event data: %w", err)
	}

	out := &models.DocumentEventData{}
	var err error
	if out.Value, err = unmarshalJSONDocument(raw.Value); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	if out.OldValue, err = unmarshalJSONDocument(raw.OldValue); err != nil {
		return nil, fmt.Errorf("decode oldValue: %w", err)
	}
	if isPresent(raw.UpdateMask) {
		out.UpdateMask = &firestorepb.DocumentMask{}
		if err := protojsonOptions.Unmarshal(raw.UpdateMask, out.UpdateMask); err != nil {
			return nil, fmt.Errorf("decode updateMask: %w", err)
		}
	}
	return out, nil
}

func unmarshalJSONDocument(raw json.RawMessage) (*firestorepb.Document, error) {
	if !isPresent(raw) {
		return nil, nil
	}
	doc := &firestorepb.Document{}
	if err := protojsonOptions.Unmarshal(raw, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func isPresent(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

// decodeProtoEventData walks the outer message by hand; the inner documents
// share their wire format with firestorepb.Document.
func decodeProtoEventData(data []byte) (*models.DocumentEventData, error) {
	out := &models.DocumentEventData{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("decode event data: %w", protowire.ParseError(n))
		}
		data = data[n:]

		if typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, fmt.Errorf("decode event data: %w", protowire.ParseError(n))
			}
			data = data[n:]
			continue
		}

		field, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return nil, fmt.Errorf("decode event data: %w", protowire.ParseError(n))
		}
		data = data[n:]

		var msg proto.Message
		switch num {
		case eventDataValueField:
			out.Value = &firestorepb.Document{}
			msg = out.Value
		case eventDataOldValueField:
			out.OldValue = &firestorepb.Document{}
			msg = out.OldValue
		case eventDataUpdateMaskField:
			out.UpdateMask = &firestorepb.DocumentMask{}
			msg = out.UpdateMask
		default:
			continue
		}
		if err := proto.Unmarshal(field, msg); err != nil {
			return nil, fmt.Errorf("decode field %d: %w", num, err)
		}
	}
	return out, nil
}

// BookingFromDocument extracts the booking fields from a document snapshot.
// A nil document yields a nil booking. Fields that are missing, null or not
// strings are treated as absent.
func BookingFromDocument(doc *firestorepb.Document) *models.Booking {
	if doc == nil {
		return nil
	}
	fields := doc.GetFields()

	booking := &models.Booking{
		ID:       LastPathSegment(doc.GetName()),
		UserID:   stringField(fields, "userId"),
		CarMake:  stringField(fields, "carMake"),
		CarModel: stringField(fields, "carModel"),
	}
	if v, ok := fields["status"].GetValueType().(*firestorepb.Value_StringValue); ok {
		status := v.StringValue
		booking.Status = &status
	}
	return booking
}

func stringField(fields map[string]*firestorepb.Value, name string) string {
	if v, ok := fields[name].GetValueType().(*firestorepb.Value_StringValue); ok {
		return v.StringValue
	}
	return ""
}

// DocumentPath strips the resource prefix from a full document name, so
// "projects/p/databases/(default)/documents/garage_bookings/b1" and the
// CloudEvent subject "documents/garage_bookings/b1" both become "garage_bookings/b1".
func DocumentPath(name string) string {
	name = strings.Trim(name, "/")
	if idx := strings.Index(name, "/documents/"); idx >= 0 {
		return name[idx+len("/documents/"):]
	}
	return strings.TrimPrefix(name, "documents/")
}

// LastPathSegment returns the document id of a document name.
func LastPathSegment(name string) string {
	name = strings.TrimRight(name, "/")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

// MatchDocumentPath matches a document path against a pattern such as
// "garage_bookings/{bookingId}" and returns the wildcard values.
func MatchDocumentPath(pattern, name string) (map[string]string, error) {
	patternParts := strings.Split(strings.Trim(pattern, "/"), "/")
	pathParts := strings.Split(DocumentPath(name), "/")
	if len(patternParts) != len(pathParts) {
		return nil, fmt.Errorf("%w: %q against %q", ErrDocumentPath, name, pattern)
	}

	params := make(map[string]string)
	for i, part := range patternParts {
		if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
			if pathParts[i] == "" {
				return nil, fmt.Errorf("%w: empty segment in %q", ErrDocumentPath, name)
			}
			params[part[1:len(part)-1]] = pathParts[i]
			continue
		}
		if part != pathParts[i] {
			return nil, fmt.Errorf("%w: %q against %q", ErrDocumentPath, name, pattern)
		}
	}
	return params, nil
}
