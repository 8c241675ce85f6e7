// internal/app/bootstrap/worker.go
package bootstrap

import (
	"sync"

	bookstore "github.com/dalemusser/comicshelf/internal/app/store/books"
	"github.com/dalemusser/comicshelf/internal/app/system/imagestore"
	"github.com/dalemusser/comicshelf/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// The sweep worker outlives BuildHandler and is stopped by Shutdown; the
// lifecycle hooks have no other place to carry it between the two.
var (
	sweepMu sync.Mutex
	sweeper *workers.CoverSweep
)

func startCoverSweep(appCfg AppConfig, db *mongo.Database, images *imagestore.Store, logger *zap.Logger) {
	if appCfg.CoverSweepInterval <= 0 {
		logger.Info("cover sweep disabled")
		return
	}
	sweepMu.Lock()
	defer sweepMu.Unlock()
	if sweeper != nil {
		sweeper.Stop()
	}
	sweeper = workers.NewCoverSweep(bookstore.New(db), images, logger, appCfg.CoverSweepInterval, appCfg.CoverSweepGrace)
	sweeper.Start()
}

func stopCoverSweep() {
	sweepMu.Lock()
	defer sweepMu.Unlock()
	if sweeper != nil {
		sweeper.Stop()
		sweeper = nil
	}
}
