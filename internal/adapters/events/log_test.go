package events_test

import (
	"testing"
	"time"

	"go.trai.ch/ivpm/internal/adapters/events"
	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/ivpm/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func TestLogListener(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	l := events.NewLogListener(log)

	gomock.InOrder(
		log.EXPECT().Debug("loading gtest (git https://example.com/gtest.git)"),
		log.EXPECT().Info("loaded gtest in 2s cache_hit=true"),
		log.EXPECT().Error(gomock.Cond(func(err error) bool {
			var z *zerr.Error
			if !asZerr(err, &z) {
				return false
			}
			return z.Message() == "boom" && z.Metadata()["package"] == "zlib"
		})),
		log.EXPECT().Info("update complete: total=2 cacheable=1 hits=1 misses=0 editable=1 errors=1 duration=2s"),
	)

	l.OnEvent(domain.Event{Kind: domain.EventPackageStart, Name: "gtest", SrcType: domain.SrcGit, SrcDesc: "https://example.com/gtest.git"})
	l.OnEvent(domain.Event{Kind: domain.EventPackageComplete, Name: "gtest", Duration: 2 * time.Second, CacheHit: true})
	l.OnEvent(domain.Event{Kind: domain.EventPackageError, Name: "zlib", Message: "boom"})
	l.OnEvent(domain.Event{Kind: domain.EventUpdateComplete, Summary: domain.UpdateSummary{
		Total: 2, Cacheable: 1, CacheHits: 1, Editable: 1, Errors: 1, Duration: 2 * time.Second,
	}})
}

func asZerr(err error, target **zerr.Error) bool {
	z, ok := err.(*zerr.Error)
	if ok {
		*target = z
	}
	return ok
}
