//go:build sonic

package remote

import (
	"github.com/bytedance/sonic"
)

// for imroc/req and synthesized bodies
var jsonMarshal = sonic.Marshal
var jsonUnmarshal = sonic.Unmarshal
