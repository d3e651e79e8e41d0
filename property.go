package proxysdk

import "errors"

// GetProperty reads a host property at the given path, e.g.
// "plugin_root_id" or "request", "headers", ":path". ok is false when the
// property does not exist.
func GetProperty(path ...string) (value []byte, ok bool, err error) {
	value, err = hostGetProperty(path)
	if errors.Is(err, StatusNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// SetProperty writes a host property at the given path. Most hosts only
// accept a small set of writable paths.
func SetProperty(path []string, value []byte) error {
	return hostSetProperty(path, value)
}
