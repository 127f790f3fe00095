package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "stridekit/internal/platform/errors"
)

type ActivityType string

const (
	ActivityWalk       ActivityType = "walk"
	ActivitySitToStand ActivityType = "sit_to_stand"
	ActivityBalance    ActivityType = "balance"
)

func (a ActivityType) Validate() error {
	switch a {
	case ActivityWalk, ActivitySitToStand, ActivityBalance:
		return nil
	default:
		return fmt.Errorf("%w: unknown activity type %q", apperrors.ErrInvalidInput, a)
	}
}

type AssistiveDevice string

const (
	DeviceNone       AssistiveDevice = ""
	DeviceCane       AssistiveDevice = "cane"
	DeviceWalker     AssistiveDevice = "walker"
	DeviceCrutches   AssistiveDevice = "crutches"
	DeviceWheelchair AssistiveDevice = "wheelchair"
)

type AssistanceLevel string

const (
	AssistanceUnset       AssistanceLevel = ""
	AssistanceIndependent AssistanceLevel = "independent"
	AssistanceSupervision AssistanceLevel = "supervision"
	AssistanceMinimal     AssistanceLevel = "minimal"
	AssistanceModerate    AssistanceLevel = "moderate"
	AssistanceMaximal     AssistanceLevel = "maximal"
)

// UserMetadata is the optional user tagging attached to a recording.
type UserMetadata struct {
	Note            string          `json:"note,omitempty"`
	Tags            []string        `json:"tags,omitempty"`
	AssistiveDevice AssistiveDevice `json:"assistive_device,omitempty"`
	AssistanceLevel AssistanceLevel `json:"level_of_assistance,omitempty"`
}

func (u UserMetadata) Validate() error {
	switch u.AssistiveDevice {
	case DeviceNone, DeviceCane, DeviceWalker, DeviceCrutches, DeviceWheelchair:
	default:
		return fmt.Errorf("%w: unknown assistive device %q", apperrors.ErrInvalidInput, u.AssistiveDevice)
	}
	switch u.AssistanceLevel {
	case AssistanceUnset, AssistanceIndependent, AssistanceSupervision, AssistanceMinimal, AssistanceModerate, AssistanceMaximal:
	default:
		return fmt.Errorf("%w: unknown level of assistance %q", apperrors.ErrInvalidInput, u.AssistanceLevel)
	}
	for _, tag := range u.Tags {
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("%w: empty tag", apperrors.ErrInvalidInput)
		}
	}
	return nil
}

type ValueKind uint8

const (
	KindString ValueKind = iota
	KindBool
	KindInt
	KindFloat
)

// CustomValue holds exactly one of bool, int, string or float64.
type CustomValue struct {
	kind ValueKind
	b    bool
	i    int64
	f    float64
	s    string
}

func BoolValue(v bool) CustomValue     { return CustomValue{kind: KindBool, b: v} }
func IntValue(v int64) CustomValue     { return CustomValue{kind: KindInt, i: v} }
func FloatValue(v float64) CustomValue { return CustomValue{kind: KindFloat, f: v} }
func StringValue(v string) CustomValue { return CustomValue{kind: KindString, s: v} }
func (v CustomValue) Kind() ValueKind  { return v.kind }

// ParseCustomValue infers the narrowest kind for a raw CLI value.
func ParseCustomValue(raw string) CustomValue {
	if b, err := strconv.ParseBool(raw); err == nil && (raw == "true" || raw == "false") {
		return BoolValue(b)
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return IntValue(i)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return FloatValue(f)
	}
	return StringValue(raw)
}

func (v CustomValue) Any() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	default:
		return v.s
	}
}

func (v CustomValue) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	default:
		return v.s
	}
}

// Session is one start-to-finish attempt to record and analyze an activity.
type Session struct {
	ID               string
	ActivityType     ActivityType
	RequestedSeconds int
	StartedAt        time.Time
	ElapsedSeconds   int
	UserMetadata     UserMetadata
	CustomMetadata   map[string]CustomValue
}

// StartRequest is what the coordinator forwards to the recorder.
type StartRequest struct {
	ActivityType     ActivityType
	RequestedSeconds int
	UserMetadata     UserMetadata
	CustomMetadata   map[string]CustomValue
}

func (r StartRequest) Validate() error {
	if err := r.ActivityType.Validate(); err != nil {
		return err
	}
	if r.RequestedSeconds < 0 {
		return fmt.Errorf("%w: requested duration must be a positive number of seconds", apperrors.ErrInvalidInput)
	}
	for key := range r.CustomMetadata {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("%w: custom metadata key is empty", apperrors.ErrInvalidInput)
		}
	}
	return r.UserMetadata.Validate()
}
