package api

import (
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Duration encodes as google.protobuf.Duration JSON ("1.500s").
type Duration struct {
	time.Duration
}

func NewDuration(d time.Duration) *Duration {
	return &Duration{Duration: d}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return protojson.Marshal(durationpb.New(d.Duration))
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var pb durationpb.Duration
	if err := protojson.Unmarshal(data, &pb); err != nil {
		return err
	}
	if err := pb.CheckValid(); err != nil {
		return err
	}
	d.Duration = pb.AsDuration()
	return nil
}

// Timestamp encodes as google.protobuf.Timestamp JSON (RFC 3339, UTC).
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return protojson.Marshal(timestamppb.New(t.Time))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var pb timestamppb.Timestamp
	if err := protojson.Unmarshal(data, &pb); err != nil {
		return err
	}
	if err := pb.CheckValid(); err != nil {
		return err
	}
	t.Time = pb.AsTime()
	return nil
}
