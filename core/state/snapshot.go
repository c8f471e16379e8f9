package state

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Snapshot bundles the manager state with every value host state so the host
// application can persist them together.
type Snapshot struct {
	Manager    ManagerInstanceState     `json:"instanceState" yaml:"instanceState"`
	ValueHosts []ValueHostInstanceState `json:"valueHostInstanceStates" yaml:"valueHostInstanceStates"`
}

// ToStruct converts the snapshot into a protobuf Struct using its JSON shape.
func (s Snapshot) ToStruct() (*structpb.Struct, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("flatten snapshot: %w", err)
	}

	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("convert snapshot: %w", err)
	}
	return st, nil
}

// SnapshotFromStruct is the inverse of ToStruct. Numeric values come back as
// float64, as with encoding/json.
func SnapshotFromStruct(st *structpb.Struct) (Snapshot, error) {
	var s Snapshot
	if st == nil {
		return s, nil
	}

	data, err := json.Marshal(st.AsMap())
	if err != nil {
		return s, fmt.Errorf("marshal struct: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}

// EncodeSnapshot returns the protobuf wire encoding of s.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	st, err := s.ToStruct()
	if err != nil {
		return nil, err
	}
	return proto.Marshal(st)
}

// DecodeSnapshot parses bytes produced by EncodeSnapshot.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var st structpb.Struct
	if err := proto.Unmarshal(data, &st); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return SnapshotFromStruct(&st)
}
