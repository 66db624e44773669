package tcat

// Status is the single-byte value of a ResponseWithStatus record.
type Status uint8

const (
	StatusSuccess      Status = 0
	StatusUnsupported  Status = 1
	StatusParseError   Status = 2
	StatusValueError   Status = 3
	StatusGeneralError Status = 4
	StatusBusy         Status = 5
	StatusUndefined    Status = 6
	StatusHashError    Status = 7
	StatusUnauthorized Status = 16
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusUnsupported:
		return "unsupported"
	case StatusParseError:
		return "parse error"
	case StatusValueError:
		return "value error"
	case StatusGeneralError:
		return "general error"
	case StatusBusy:
		return "busy"
	case StatusUndefined:
		return "undefined"
	case StatusHashError:
		return "hash error"
	case StatusUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}
