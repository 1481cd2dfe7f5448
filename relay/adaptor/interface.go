package adaptor

import (
	"context"

	"github.com/songquanpeng/apitest/relay/meta"
)

// Completer turns a prompt into free-form completion text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Adaptor is a Completer bound to one upstream provider.
type Adaptor interface {
	Completer
	Init(meta *meta.Meta) error
	GetChannelName() string
}
