//go:build !sonic

package remote

import (
	"github.com/goccy/go-json"
)

// for imroc/req and synthesized bodies
var jsonMarshal = json.Marshal
var jsonUnmarshal = json.Unmarshal
