package adaptor

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/Laisky/errors/v2"
	gutils "github.com/Laisky/go-utils/v5"
	"github.com/Laisky/zap"

	"github.com/songquanpeng/apitest/common/logger"
)

// DoRequestHelper posts a JSON payload to url. setup may add provider specific headers.
func DoRequestHelper(ctx context.Context, client *http.Client, url string, payload []byte, setup func(req *http.Request)) (*http.Response, error) {
	req, err := gutils.NewReusableRequest(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "new request failed")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if setup != nil {
		setup(req)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do request failed")
	}

	logger.Logger.Debug("completion request sent",
		zap.String("url", url),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))
	return resp, nil
}
