package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Option is one key of a dependency entry, forwarded to a source factory.
type Option struct {
	Key     string
	Value   any
	SrcInfo SrcInfo
}

// String returns the value rendered as a string.
func (o Option) String() string {
	switch v := o.Value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Bool interprets the value as a boolean. YAML booleans and the strings
// true/false/yes/no/on/off are accepted.
func (o Option) Bool() (bool, bool) {
	switch v := o.Value.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "on", "1":
			return true, true
		case "false", "no", "off", "0":
			return false, true
		}
	case int:
		return v != 0, true
	}
	return false, false
}

// Int interprets the value as an integer.
func (o Option) Int() (int, bool) {
	switch v := o.Value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// Options is the ordered list of keys of a dependency entry.
type Options []Option

// Get returns the option with the given key.
func (o Options) Get(key string) (Option, bool) {
	for _, opt := range o {
		if opt.Key == key {
			return opt, true
		}
	}
	return Option{}, false
}

// Keys returns the option keys in declaration order.
func (o Options) Keys() []string {
	keys := make([]string, len(o))
	for i, opt := range o {
		keys[i] = opt.Key
	}
	return keys
}
