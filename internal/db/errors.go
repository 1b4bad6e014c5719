package db

// Op names the store operation an Error came from.
type Op string

const (
	OpConnect Op = "CONNECT"
	OpPing    Op = "PING"
	OpHGetAll Op = "HGETALL"
	OpScan    Op = "SCAN"
)

// Error attaches the failing operation to a store error so logs and
// health output say which step broke.
type Error struct {
	Op  Op
	Err error
}

func (e *Error) Error() string { return string(e.Op) + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
