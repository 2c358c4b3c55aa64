// =============================================================================
// Bill Report Generator - Batch Coordinator
// =============================================================================
//
// The coordinator drives one batch run:
//
//   Idle -> Scanning -> ParsingAll -> Joined
//                   \            \-> Failed
//                    \-> Failed
//
// Every discovered statement is parsed in its own goroutine, with no limit on
// how many run at once. Results are joined by index so the bills come out in
// scan order whatever order the parses finish in.
//
// The join is all-or-nothing: the first failing parse cancels the shared
// context and the whole run fails without returning any bill.
//
// =============================================================================

package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/billreport/internal/types"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Scanner lists the input directory.
type Scanner interface {
	Scan(ctx context.Context, path string) ([]types.RecordIdentity, error)
}

// Parser turns one statement into a bill. It must be safe for concurrent use.
type Parser interface {
	Parse(ctx context.Context, inputDir string, identity types.RecordIdentity) (*types.Bill, error)
}

// =============================================================================
// STATE
// =============================================================================

// State is the coordinator's position in a run.
type State int

const (
	StateIdle State = iota
	StateScanning
	StateParsingAll
	StateJoined
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateParsingAll:
		return "parsing"
	case StateJoined:
		return "joined"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result is the outcome of a successful run.
type Result struct {
	// RunID identifies the run in log output.
	RunID string

	// Bills holds one bill per scanned statement, in scan order.
	Bills []types.Bill

	// Elapsed is the wall time of the run.
	Elapsed time.Duration
}

// =============================================================================
// COORDINATOR
// =============================================================================

// Coordinator runs the scan -> parse fan-out -> join pipeline.
type Coordinator struct {
	scanner Scanner
	parser  Parser
	logger  *zap.Logger

	mu    sync.Mutex
	state State
}

// NewCoordinator creates a Coordinator. A nil logger discards output.
func NewCoordinator(scanner Scanner, parser Parser, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{scanner: scanner, parser: parser, logger: logger}
}

// State returns the current state of the coordinator.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Run scans inputDir and parses every statement concurrently.
//
// RETURNS:
//   - The joined result when the scan and every parse succeed.
//   - The scan error, or the first parse error, otherwise. No bills are
//     returned on failure.
func (c *Coordinator) Run(ctx context.Context, inputDir string) (*Result, error) {
	startTime := time.Now()
	runID := uuid.New().String()
	logger := c.logger.With(zap.String("run_id", runID))

	// =========================================================================
	// STEP 1: SCAN
	// =========================================================================

	c.setState(StateScanning)
	logger.Info("Scanning input directory", zap.String("dir", inputDir))

	identities, err := c.scanner.Scan(ctx, inputDir)
	if err != nil {
		c.setState(StateFailed)
		logger.Error("Scan failed", zap.String("dir", inputDir), zap.Error(err))
		return nil, err
	}

	logger.Info("Found statements", zap.Int("files", len(identities)))

	// =========================================================================
	// STEP 2: PARSE ALL (fan-out)
	// =========================================================================

	c.setState(StateParsingAll)

	// Each goroutine writes only its own slot.
	bills := make([]types.Bill, len(identities))

	g, gctx := errgroup.WithContext(ctx)
	for i, identity := range identities {
		g.Go(func() error {
			bill, err := c.parser.Parse(gctx, inputDir, identity)
			if err != nil {
				return err
			}
			bills[i] = *bill
			return nil
		})
	}

	// =========================================================================
	// STEP 3: JOIN (fan-in)
	// =========================================================================

	if err := g.Wait(); err != nil {
		c.setState(StateFailed)
		logger.Error("Batch failed", zap.Error(err))
		return nil, err
	}

	c.setState(StateJoined)

	result := &Result{
		RunID:   runID,
		Bills:   bills,
		Elapsed: time.Since(startTime),
	}

	logger.Info("Batch joined",
		zap.Int("bills", len(bills)),
		zap.Duration("elapsed", result.Elapsed))

	return result, nil
}
