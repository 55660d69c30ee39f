package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// Per-symbol outcomes. Skipped failures keep the batch moving; only a
// fatal outcome (cancellation) aborts it.
type fetchOutcome int

const (
	outcomeSuccess fetchOutcome = iota
	outcomeSkipped
	outcomeFatal
)

// RunBatch starts a batch fetch for symbols and returns its task id
// immediately so the caller can poll. The batch body runs on a worker
// goroutine; the number of concurrently running batches is bounded by the
// semaphore, excess batches wait their turn in "task started" state.
func (sc *ServiceContext) RunBatch(symbols []string) string {
	taskId := uuid.NewString()
	sc.Tracker.Initialize(taskId, len(symbols))

	go func() {
		if err := sc.batchSem.Acquire(sc.Context, 1); err != nil {
			sc.Tracker.Fail(taskId, err.Error())
			return
		}
		defer sc.batchSem.Release(1)

		sc.runBatch(taskId, symbols)
	}()

	return taskId
}

func (sc *ServiceContext) runBatch(taskId string, symbols []string) {
	start := time.Now()
	log.Printf("batch %s started for %d symbols", taskId, len(symbols))

	for i, symbol := range symbols {
		outcome, message := sc.fetchOne(taskId, symbol)
		if outcome == outcomeFatal {
			log.Printf("batch %s aborted at %s: %s (time: %v)", taskId, symbol, message, time.Since(start))
			sc.Tracker.Fail(taskId, message)
			return
		}

		sc.Tracker.UpdateProgress(taskId, i+1, message)
	}

	sc.Tracker.Complete(taskId)
	log.Printf("batch %s completed (time: %v)", taskId, time.Since(start))
}

// fetchOne runs the fetch-save-audit sequence for a single symbol and tags
// the outcome. A failed fetch or save is a skip; only a dead context is
// fatal. Audit log failures are logged and ignored, the audit trail is
// best-effort.
func (sc *ServiceContext) fetchOne(taskId, symbol string) (fetchOutcome, string) {
	if err := sc.Context.Err(); err != nil {
		return outcomeFatal, err.Error()
	}

	logId, err := sc.Store.StartFetchLog(sc.Context, taskId, symbol)
	if err != nil {
		log.Printf("error opening fetch log for %s: %v", symbol, err)
		logId = 0
	}

	rec, err := sc.Fetcher.FetchStock(symbol)
	if err != nil {
		log.Printf("fetch failed for %s: %v", symbol, err)
		sc.closeFetchLogError(logId, symbol, err)
		return outcomeSkipped, fmt.Sprintf("%s fetch failed", symbol)
	}

	if err := sc.Store.SaveStock(sc.Context, rec); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return outcomeFatal, err.Error()
		}
		log.Printf("save failed for %s: %v", symbol, err)
		sc.closeFetchLogError(logId, symbol, err)
		return outcomeSkipped, fmt.Sprintf("%s fetch failed", symbol)
	}

	if logId != 0 {
		if err := sc.Store.CompleteFetchLog(sc.Context, logId, fmt.Sprintf("%s fetched", symbol), rec.Id); err != nil {
			log.Printf("error closing fetch log for %s: %v", symbol, err)
		}
	}

	return outcomeSuccess, fmt.Sprintf("%s fetched", symbol)
}

func (sc *ServiceContext) closeFetchLogError(logId int32, symbol string, cause error) {
	if logId == 0 {
		return
	}
	if err := sc.Store.ErrorFetchLog(sc.Context, logId, fmt.Sprintf("%s fetch failed", symbol), cause.Error()); err != nil {
		log.Printf("error closing fetch log for %s: %v", symbol, err)
	}
}
