package iso8583

import "log/slog"

// MessageOption represents a functional option for message configuration
type MessageOption func(*Message)

// WithSize sets the number of field slots (highest usable id plus one).
// Values are clamped to 2..DefaultMessageSize.
func WithSize(size int) MessageOption {
	return func(m *Message) {
		m.resize(size)
	}
}

// WithMTI sets the Message Type Indicator
func WithMTI(mti string) MessageOption {
	return func(m *Message) {
		m.mti = mti
	}
}

// WithField sets a field value during message creation
func WithField(fieldNum int, value interface{}) MessageOption {
	return func(m *Message) {
		m.SetField(fieldNum, value)
	}
}

// WithFields sets multiple fields during message creation
func WithFields(fields map[int]interface{}) MessageOption {
	return func(m *Message) {
		for fieldNum, value := range fields {
			m.SetField(fieldNum, value)
		}
	}
}

// PackagerOption represents a functional option for packager configuration
type PackagerOption func(*CompiledPackager)

// WithLogger sets the logger used by the packager.
func WithLogger(logger *slog.Logger) PackagerOption {
	return func(cp *CompiledPackager) {
		cp.logger = logger
	}
}
