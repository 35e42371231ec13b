package keys

// ValidationError reports bad input caught before any store call. The
// message is shown to the user as-is.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	return e.Reason
}

// StoreError wraps a key store fault: network, server, or a record the
// store could not find. Callers treat all of these uniformly.
type StoreError struct {
	Err error
}

func (e StoreError) Error() string {
	return "key store: " + e.Err.Error()
}

func (e StoreError) Unwrap() error {
	return e.Err
}
