package sqlcmd

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/charles-muller/AspNetSessionState/pkg/sessionstate"
)

// outParam holds the destination for one declared output parameter.
// The driver writes into value when a non-query command succeeds.
type outParam struct {
	value any
}

// buildArgs combines input arguments with sql.Out bindings for every
// declared output parameter.
func buildArgs(in []any, out map[string]*outParam) []any {
	args := make([]any, 0, len(in)+len(out))
	args = append(args, in...)
	for name, p := range out {
		args = append(args, sql.Named(name, sql.Out{Dest: &p.value}))
	}
	return args
}

// OutValue returns the raw value of a declared output parameter after a
// successful non-query execution.
func (inv *Invocation) OutValue(name string) (any, error) {
	p, ok := inv.out[name]
	if !ok {
		return nil, fmt.Errorf("output parameter %q: %w", name, sessionstate.ErrUnknownOutputParam)
	}
	return p.value, nil
}

// OutInt64 returns a declared output parameter as an int64.
// Database NULL yields 0.
func (inv *Invocation) OutInt64(name string) (int64, error) {
	v, err := inv.OutValue(name)
	if err != nil {
		return 0, err
	}
	switch val := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return val, nil
	case int32:
		return int64(val), nil
	case int:
		return int64(val), nil
	default:
		return 0, fmt.Errorf("output parameter %q: cannot convert %T to int64", name, v)
	}
}

// OutBool returns a declared output parameter as a bool.
// Database NULL yields false.
func (inv *Invocation) OutBool(name string) (bool, error) {
	v, err := inv.OutValue(name)
	if err != nil {
		return false, err
	}
	switch val := v.(type) {
	case nil:
		return false, nil
	case bool:
		return val, nil
	case int64:
		return val != 0, nil
	default:
		return false, fmt.Errorf("output parameter %q: cannot convert %T to bool", name, v)
	}
}

// OutString returns a declared output parameter as a string.
// Database NULL yields "".
func (inv *Invocation) OutString(name string) (string, error) {
	v, err := inv.OutValue(name)
	if err != nil {
		return "", err
	}
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case []byte:
		return string(val), nil
	default:
		return "", fmt.Errorf("output parameter %q: cannot convert %T to string", name, v)
	}
}

// OutBytes returns a declared output parameter as raw bytes.
// Database NULL yields nil.
func (inv *Invocation) OutBytes(name string) ([]byte, error) {
	v, err := inv.OutValue(name)
	if err != nil {
		return nil, err
	}
	switch val := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		return val, nil
	case string:
		return []byte(val), nil
	default:
		return nil, fmt.Errorf("output parameter %q: cannot convert %T to []byte", name, v)
	}
}

// OutTime returns a declared output parameter as a time.Time.
// Database NULL yields the zero time.
func (inv *Invocation) OutTime(name string) (time.Time, error) {
	v, err := inv.OutValue(name)
	if err != nil {
		return time.Time{}, err
	}
	switch val := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return val, nil
	default:
		return time.Time{}, fmt.Errorf("output parameter %q: cannot convert %T to time.Time", name, v)
	}
}
