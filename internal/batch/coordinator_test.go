package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ginjaninja78/billreport/internal/config"
	"github.com/ginjaninja78/billreport/internal/converter"
	"github.com/ginjaninja78/billreport/internal/scanner"
	"github.com/ginjaninja78/billreport/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// =============================================================================
// FAKES
// =============================================================================

type fakeScanner struct {
	identities []types.RecordIdentity
	err        error
}

func (s *fakeScanner) Scan(context.Context, string) ([]types.RecordIdentity, error) {
	return s.identities, s.err
}

// fakeParser returns a bill named after the identity. Delays let later
// identities finish first; failures are keyed by file name.
type fakeParser struct {
	delays   map[string]time.Duration
	failures map[string]error
	calls    atomic.Int32
}

func (p *fakeParser) Parse(ctx context.Context, _ string, identity types.RecordIdentity) (*types.Bill, error) {
	p.calls.Add(1)
	if d := p.delays[identity.FileName]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := p.failures[identity.FileName]; err != nil {
		return nil, err
	}
	return &types.Bill{Name: identity.Name, Total: 1}, nil
}

func identities(n int) []types.RecordIdentity {
	out := make([]types.RecordIdentity, n)
	for i := range out {
		out[i] = types.RecordIdentity{
			FileName: fmt.Sprintf("2021-01-%02d_Bill%d.csv", i+1, i),
			Name:     fmt.Sprintf("Bill%d", i),
		}
	}
	return out
}

// =============================================================================
// TESTS
// =============================================================================

func TestRun_PreservesScanOrder(t *testing.T) {
	ids := identities(5)
	parser := &fakeParser{delays: map[string]time.Duration{
		ids[0].FileName: 40 * time.Millisecond,
		ids[1].FileName: 20 * time.Millisecond,
		ids[2].FileName: 30 * time.Millisecond,
	}}

	coord := NewCoordinator(&fakeScanner{identities: ids}, parser, nil)
	assert.Equal(t, StateIdle, coord.State())

	result, err := coord.Run(context.Background(), "./csv")
	require.NoError(t, err)

	require.Len(t, result.Bills, 5)
	for i, bill := range result.Bills {
		assert.Equal(t, ids[i].Name, bill.Name)
	}
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, StateJoined, coord.State())
	assert.EqualValues(t, 5, parser.calls.Load())
}

func TestRun_ScanFailure(t *testing.T) {
	scanErr := &scanner.DirectoryReadError{Path: "./csv", Err: os.ErrNotExist}
	parser := &fakeParser{}

	coord := NewCoordinator(&fakeScanner{err: scanErr}, parser, nil)
	result, err := coord.Run(context.Background(), "./csv")

	assert.Nil(t, result)
	assert.Same(t, scanErr, err)
	assert.Equal(t, StateFailed, coord.State())
	assert.Zero(t, parser.calls.Load())
}

func TestRun_AnyParseFailureFailsTheBatch(t *testing.T) {
	ids := identities(4)
	parseErr := &converter.RecordParseError{FileName: ids[2].FileName, Err: errors.New("boom")}
	parser := &fakeParser{
		failures: map[string]error{ids[2].FileName: parseErr},
		// Siblings are still running when the failure arrives.
		delays: map[string]time.Duration{
			ids[0].FileName: time.Second,
			ids[3].FileName: time.Second,
		},
	}

	coord := NewCoordinator(&fakeScanner{identities: ids}, parser, nil)

	start := time.Now()
	result, err := coord.Run(context.Background(), "./csv")

	assert.Nil(t, result)
	assert.Same(t, parseErr, err)
	assert.Equal(t, StateFailed, coord.State())
	// The failure cancels the slow siblings instead of waiting them out.
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestRun_EmptyDirectory(t *testing.T) {
	coord := NewCoordinator(&fakeScanner{}, &fakeParser{}, nil)

	result, err := coord.Run(context.Background(), "./csv")
	require.NoError(t, err)
	assert.Empty(t, result.Bills)
	assert.Equal(t, StateJoined, coord.State())
}

func TestRun_CallerCancellation(t *testing.T) {
	ids := identities(2)
	parser := &fakeParser{delays: map[string]time.Duration{
		ids[0].FileName: time.Second,
		ids[1].FileName: time.Second,
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := NewCoordinator(&fakeScanner{identities: ids}, parser, nil).Run(ctx, "./csv")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "scanning", StateScanning.String())
	assert.Equal(t, "parsing", StateParsingAll.String())
	assert.Equal(t, "joined", StateJoined.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "State(42)", State(42).String())
}

// =============================================================================
// INTEGRATION
// =============================================================================

func newRealCoordinator() *Coordinator {
	cfg := config.Default()
	return NewCoordinator(scanner.New(cfg.Separator, false, nil), converter.New(cfg, nil), nil)
}

func TestRun_RealFiles(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"2021-01-01_Alice.csv": "name,amount,price\nCoffee,2,4.50\nTea,1,3.00\n",
		"2021-01-02_Bob.csv":   "name,amount,price\nCake,1,2.25\n",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
	}

	result, err := newRealCoordinator().Run(context.Background(), dir)
	require.NoError(t, err)

	totals := map[string]float64{}
	for _, bill := range result.Bills {
		totals[bill.Name] = bill.Total
	}
	assert.Equal(t, map[string]float64{"Alice": 7.5, "Bob": 2.25}, totals)
}

func TestRun_RealFilesOneBroken(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2021-01-01_Alice.csv"), []byte("name,amount,price\nCoffee,2,4.50\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2021-01-02_Bob.csv"), []byte("name,amount,price\nCake,one,2.25\n"), 0644))

	result, err := newRealCoordinator().Run(context.Background(), dir)
	assert.Nil(t, result)

	var parseErr *converter.RecordParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "2021-01-02_Bob.csv", parseErr.FileName)
}

func TestRun_RealMissingDirectory(t *testing.T) {
	_, err := newRealCoordinator().Run(context.Background(), filepath.Join(t.TempDir(), "csv"))

	var dirErr *scanner.DirectoryReadError
	assert.True(t, errors.As(err, &dirErr))
}
