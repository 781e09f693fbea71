// Package cloud talks to hosted image services: background removal and pin
// publishing.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrNotConfigured is returned when the service credentials are missing.
var ErrNotConfigured = errors.New("cloud service is not configured")

// ServiceError reports a failed call to a hosted service.
type ServiceError struct {
	Service string
	Op      string
	Err     error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: failed to %s: %v", e.Service, e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Publisher stores a rendered pin and returns where it can be fetched.
type Publisher interface {
	Publish(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// objectName turns an export filename into a storage key under prefix.
func objectName(prefix, name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		name = "pin.png"
	}
	if prefix == "" {
		return name
	}
	return strings.TrimSuffix(prefix, "/") + "/" + name
}
