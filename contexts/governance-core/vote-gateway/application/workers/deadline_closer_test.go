package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	ballotledger "agora/contexts/governance-core/ballot-ledger"
	ledgeradapter "agora/contexts/governance-core/vote-gateway/adapters/ledger"
	"agora/contexts/governance-core/vote-gateway/ports"

	"github.com/ethereum/go-ethereum/common"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func newSweepFixture(t *testing.T) (ledgeradapter.Adapter, *fixedClock) {
	t.Helper()
	clock := &fixedClock{now: time.Unix(1_000, 0).UTC()}
	module := ballotledger.NewModule(ballotledger.Dependencies{
		ProgramAddress: common.HexToAddress("0x00000000000000000000000000000000a602a000"),
		GenesisAdmin:   common.HexToAddress("0x0000000000000000000000000000000000000a11"),
		Clock:          clock,
	})
	return ledgeradapter.Adapter{
		Program:   module.Program,
		Authority: common.HexToAddress("0x0000000000000000000000000000000000000a11"),
	}, clock
}

func TestRunOnceClosesOnlyExpiredProposals(t *testing.T) {
	ledger, clock := newSweepFixture(t)
	admin := common.HexToAddress("0x0000000000000000000000000000000000000a11")

	expired, _, err := ledger.Program.Create(admin, "expired", "x", "c", "a", 0, 60)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	running, _, err := ledger.Program.Create(admin, "running", "x", "c", "a", 0, 3600)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	openEnded, _, err := ledger.Program.Create(admin, "open", "x", "c", "a", 0, 0)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	clock.now = clock.now.Add(2 * time.Minute)
	worker := DeadlineCloser{
		Proposals: ledger,
		Closer:    ledger,
		Clock:     clock,
	}
	if err := worker.RunOnce(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	for _, tc := range []struct {
		id   uint64
		want bool
	}{
		{expired, true},
		{running, false},
		{openEnded, false},
	} {
		proposal, err := ledger.Program.GetProposal(tc.id)
		if err != nil {
			t.Fatalf("get proposal failed: %v", err)
		}
		if proposal.Closed != tc.want {
			t.Fatalf("proposal %d: closed=%v, want %v", tc.id, proposal.Closed, tc.want)
		}
	}

	// A second sweep sees the closed proposal and does nothing.
	if err := worker.RunOnce(context.Background()); err != nil {
		t.Fatalf("repeat sweep failed: %v", err)
	}
}

type failingCloser struct {
	failID uint64
	inner  ports.ProposalCloser
	calls  int
}

func (f *failingCloser) Close(ctx context.Context, proposalID uint64) error {
	f.calls++
	if proposalID == f.failID {
		return errors.New("close refused")
	}
	return f.inner.Close(ctx, proposalID)
}

func TestRunOnceContinuesPastFailures(t *testing.T) {
	ledger, clock := newSweepFixture(t)
	admin := common.HexToAddress("0x0000000000000000000000000000000000000a11")

	first, _, err := ledger.Program.Create(admin, "a", "x", "c", "a", 0, 60)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	second, _, err := ledger.Program.Create(admin, "b", "x", "c", "a", 0, 60)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	clock.now = clock.now.Add(2 * time.Minute)
	closer := &failingCloser{failID: first, inner: ledger}
	worker := DeadlineCloser{
		Proposals: ledger,
		Closer:    closer,
		Clock:     clock,
	}
	if err := worker.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected the first failure to be reported")
	}
	if closer.calls != 2 {
		t.Fatalf("expected the sweep to reach both proposals, got %d calls", closer.calls)
	}
	proposal, err := ledger.Program.GetProposal(second)
	if err != nil {
		t.Fatalf("get proposal failed: %v", err)
	}
	if !proposal.Closed {
		t.Fatalf("expected the second proposal closed despite the first failing")
	}
}
