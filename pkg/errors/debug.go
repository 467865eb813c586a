package errors

import (
	"errors"
	"fmt"
)

type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	UpstreamStatus int `json:"upstream_status,omitempty"`
}

// statusCoder is implemented by upstream client errors that carry the HTTP
// status of the failed call.
type statusCoder interface {
	StatusCode() int
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var sc statusCoder
	if errors.As(err, &sc) {
		d.UpstreamStatus = sc.StatusCode()
	}

	return d
}
