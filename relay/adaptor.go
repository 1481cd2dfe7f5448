package relay

import (
	"net/url"
	"strings"
	"sync"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/songquanpeng/apitest/common/logger"

	"github.com/songquanpeng/apitest/relay/adaptor"
	"github.com/songquanpeng/apitest/relay/adaptor/aws"
	"github.com/songquanpeng/apitest/relay/adaptor/openai"
	"github.com/songquanpeng/apitest/relay/channeltype"
	"github.com/songquanpeng/apitest/relay/meta"
)

// GetAdaptor returns an uninitialized adaptor for provider, or nil when the provider
// has no completion backend.
func GetAdaptor(provider string) adaptor.Adaptor {
	switch channeltype.NormalizeProvider(provider) {
	case channeltype.OpenAI:
		return &openai.Adaptor{}
	case channeltype.AwsBedrock:
		return &aws.Adaptor{}
	default:
		return nil
	}
}

// GetCompleter builds a ready-to-use completer for m. A nil completer with a nil error
// means plan drafting is disabled.
func GetCompleter(m *meta.Meta) (adaptor.Completer, error) {
	a := GetAdaptor(m.Provider)
	if a == nil {
		return nil, nil
	}
	if missingPublicOpenAIKey(m) {
		warnMissingKeyOnce.Do(func() {
			logger.Logger.Warn("OPENAI_API_KEY is empty for the public OpenAI endpoint, plan drafting disabled",
				zap.String("base_url", m.BaseURL))
		})
		return nil, nil
	}
	if err := a.Init(m); err != nil {
		return nil, errors.Wrapf(err, "init %s adaptor", a.GetChannelName())
	}
	return a, nil
}

const publicOpenAIHost = "api.openai.com"

var warnMissingKeyOnce sync.Once

// missingPublicOpenAIKey reports an openai provider pointed at the public endpoint
// without a key. Other base URLs are allowed to run keyless.
func missingPublicOpenAIKey(m *meta.Meta) bool {
	if channeltype.NormalizeProvider(m.Provider) != channeltype.OpenAI || strings.TrimSpace(m.APIKey) != "" {
		return false
	}
	u, err := url.Parse(strings.TrimSpace(m.BaseURL))
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Hostname(), publicOpenAIHost)
}
