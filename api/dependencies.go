package api

import (
	"github.com/segmentio/analytics-go/v3"

	"github.com/invoicebox/backend/usecases"
	"github.com/invoicebox/backend/utils"
)

type dependencies struct {
	Authentication utils.Authentication
	SegmentClient  analytics.Client
}

// InitDependencies builds what the router needs beyond the usecases. The segment client is
// nil when no write key is configured.
func InitDependencies(conf Configuration, uc usecases.Usecases) dependencies {
	var segmentClient analytics.Client
	if !conf.DisableSegment && conf.SegmentWriteKey != "" {
		segmentClient = analytics.New(conf.SegmentWriteKey)
	}

	return dependencies{
		Authentication: utils.NewAuthentication(uc.NewVerifier()),
		SegmentClient:  segmentClient,
	}
}
