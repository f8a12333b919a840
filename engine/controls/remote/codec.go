package remote

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-icosphere/engine/controls"
	"github.com/gorilla/websocket"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// EncodeSnapshot serializes a control snapshot as a binary google.protobuf.Struct.
//
// Parameters:
//   - s: the snapshot to encode
//
// Returns:
//   - []byte: the protobuf wire bytes
//   - error: an error if the snapshot could not be converted
func EncodeSnapshot(s controls.Snapshot) ([]byte, error) {
	st, err := structpb.NewStruct(s.ToMap())
	if err != nil {
		return nil, fmt.Errorf("snapshot to struct: %w", err)
	}
	return proto.Marshal(st)
}

// EncodeSnapshotJSON serializes a control snapshot as the protojson form of the same Struct,
// for clients that asked for text frames.
func EncodeSnapshotJSON(s controls.Snapshot) ([]byte, error) {
	st, err := structpb.NewStruct(s.ToMap())
	if err != nil {
		return nil, fmt.Errorf("snapshot to struct: %w", err)
	}
	return protojson.Marshal(st)
}

func encodeBoth(s controls.Snapshot) ([]byte, []byte, error) {
	binary, err := EncodeSnapshot(s)
	if err != nil {
		return nil, nil, err
	}
	text, err := EncodeSnapshotJSON(s)
	if err != nil {
		return nil, nil, err
	}
	return binary, text, nil
}

// DecodeValues parses a client frame into control key/value pairs. Text frames hold a JSON
// object and binary frames a protobuf Struct; both decode through structpb so numbers arrive
// as float64 either way.
//
// Parameters:
//   - messageType: websocket.TextMessage or websocket.BinaryMessage
//   - data: the frame payload
//
// Returns:
//   - map[string]any: the decoded values
//   - error: an error if the payload is malformed or the frame type is unsupported
func DecodeValues(messageType int, data []byte) (map[string]any, error) {
	st := &structpb.Struct{}
	switch messageType {
	case websocket.TextMessage:
		if err := protojson.Unmarshal(data, st); err != nil {
			return nil, fmt.Errorf("decode json frame: %w", err)
		}
	case websocket.BinaryMessage:
		if err := proto.Unmarshal(data, st); err != nil {
			return nil, fmt.Errorf("decode struct frame: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported frame type %d", messageType)
	}
	return st.AsMap(), nil
}

// encodeError builds the text frame sent back to a client whose update was rejected.
func encodeError(err error) []byte {
	data, mErr := protojson.Marshal(&structpb.Struct{
		Fields: map[string]*structpb.Value{
			"error": structpb.NewStringValue(err.Error()),
		},
	})
	if mErr != nil {
		return []byte(`{"error":"internal"}`)
	}
	return data
}
