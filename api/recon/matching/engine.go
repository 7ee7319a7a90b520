package matching

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BelCodeur2005/PREDYKT-FINTECH-AFRICA-sub002/api"
)

// Snapshot is a read-only view of the unreconciled activity of one bank
// account over one period, plus the suggestions still awaiting a decision.
type Snapshot struct {
	CompanyID     string
	BankAccountID string
	Transactions  []BankTransaction
	Entries       []LedgerEntry
	Pending       []Suggestion
}

// Result is the outcome of one engine pass. Suggestions are built in memory
// and handed to the caller for persistence; the engine itself never writes.
type Result struct {
	Suggestions    []Suggestion
	AlreadyPending []Suggestion
	Skipped        int
}

// Engine generates scored match suggestions between bank transactions and
// ledger entries. Scoring fans out across workers over the shared read-only
// snapshot; emission and de-duplication happen in a single-writer phase so two
// workers can never claim the same record.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	cfg.Normalize()
	return &Engine{cfg: cfg}
}

// candidate is a scored pairing proposal produced by the scoring phase. It is
// not a suggestion yet: it still has to survive the single-writer claim phase.
type candidate struct {
	txnIDs    []string
	entryIDs  []string
	score     int
	rationale string
}

// Run executes one matching pass over the snapshot. Cancelling the context
// stops the pass between transactions; half-built candidates are discarded,
// nothing is handed back for persistence.
func (e *Engine) Run(ctx context.Context, snap Snapshot) (Result, error) {
	var res Result

	txns, entries, skipped := e.cleanPools(snap)
	res.Skipped = skipped

	// Records already referenced by a pending suggestion are not offered
	// again; the pending suggestion itself is yielded instead.
	claimedTxns := map[string]bool{}
	claimedEntries := map[string]bool{}
	pendingSeen := map[string]bool{}
	for _, s := range snap.Pending {
		if s.Status != SuggestionPending {
			continue
		}
		for _, id := range s.TransactionIDs {
			claimedTxns[id] = true
		}
		for _, id := range s.EntryIDs {
			claimedEntries[id] = true
		}
		if !pendingSeen[s.SuggestionID] {
			pendingSeen[s.SuggestionID] = true
			res.AlreadyPending = append(res.AlreadyPending, s)
		}
	}

	pool := txns[:0]
	for _, t := range txns {
		if !claimedTxns[t.TransactionID] {
			pool = append(pool, t)
		}
	}
	txns = pool
	entryPool := entries[:0]
	for _, en := range entries {
		if !claimedEntries[en.EntryID] {
			entryPool = append(entryPool, en)
		}
	}
	entries = entryPool

	if len(txns) == 0 || len(entries) == 0 {
		return res, nil
	}

	candidates, err := e.scoreParallel(ctx, txns, entries)
	if err != nil {
		return Result{}, err
	}

	// Single-writer phase: highest score wins, a record is claimed at most once.
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	usedTxns := map[string]bool{}
	usedEntries := map[string]bool{}
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if claims(c, usedTxns, usedEntries) {
			continue
		}
		claim(c, usedTxns, usedEntries)
		res.Suggestions = append(res.Suggestions, e.build(snap, c))
	}

	// Multi-way passes over whatever is still unclaimed.
	leftTxns := unclaimedTxns(txns, usedTxns)
	leftEntries := unclaimedEntries(entries, usedEntries)

	for _, c := range e.manyToOne(ctx, leftTxns, leftEntries) {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if claims(c, usedTxns, usedEntries) {
			continue
		}
		claim(c, usedTxns, usedEntries)
		res.Suggestions = append(res.Suggestions, e.build(snap, c))
	}

	leftTxns = unclaimedTxns(txns, usedTxns)
	leftEntries = unclaimedEntries(entries, usedEntries)
	for _, c := range e.manyToMany(leftTxns, leftEntries) {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if claims(c, usedTxns, usedEntries) {
			continue
		}
		claim(c, usedTxns, usedEntries)
		res.Suggestions = append(res.Suggestions, e.build(snap, c))
	}

	return res, nil
}

// cleanPools drops reconciled, zero-amount and malformed records. Anomalies
// are skipped with a warning; they never abort the run.
func (e *Engine) cleanPools(snap Snapshot) ([]BankTransaction, []LedgerEntry, int) {
	skipped := 0
	txns := make([]BankTransaction, 0, len(snap.Transactions))
	for _, t := range snap.Transactions {
		if t.Reconciled {
			continue
		}
		if t.Amount.IsZero() || t.TransactionID == "" {
			api.LogError("matching: skipping malformed bank transaction %q (zero amount or missing id)", t.TransactionID)
			skipped++
			continue
		}
		txns = append(txns, t)
	}
	entries := make([]LedgerEntry, 0, len(snap.Entries))
	for _, en := range snap.Entries {
		if en.Reconciled {
			continue
		}
		if en.EntryID == "" || !en.Valid() {
			api.LogError("matching: skipping malformed ledger entry %q (debit/credit invariant violated)", en.EntryID)
			skipped++
			continue
		}
		entries = append(entries, en)
	}
	return txns, entries, skipped
}

// scoreParallel fans transaction scoring out across workers. Each worker only
// reads the shared pools and writes its candidates to the results channel;
// nothing is claimed here.
func (e *Engine) scoreParallel(ctx context.Context, txns []BankTransaction, entries []LedgerEntry) ([]candidate, error) {
	jobs := make(chan BankTransaction)
	// candidatesFor emits at most two candidates per transaction, so this
	// buffer can never fill and block the workers.
	results := make(chan candidate, 2*len(txns))
	var wg sync.WaitGroup

	workers := e.cfg.Workers
	if workers > len(txns) {
		workers = len(txns)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for txn := range jobs {
				for _, c := range e.candidatesFor(txn, entries) {
					select {
					case results <- c:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	feedErr := func() error {
		defer close(jobs)
		for _, txn := range txns {
			select {
			case jobs <- txn:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	}()

	wg.Wait()
	close(results)
	if feedErr != nil {
		return nil, feedErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []candidate
	for c := range results {
		out = append(out, c)
	}
	return out, nil
}

// candidatesFor scores one transaction against the entry pool: the best single
// candidate if it clears the FAIR bar, otherwise one-to-many combinations.
func (e *Engine) candidatesFor(txn BankTransaction, entries []LedgerEntry) []candidate {
	best := candidate{score: -1}
	for i := range entries {
		c, ok := e.scoreSingle(txn, entries[i])
		if ok && c.score > best.score {
			best = c
		}
	}
	if best.score >= e.cfg.FairThreshold {
		return []candidate{best}
	}

	var out []candidate
	if best.score >= e.cfg.LowThreshold {
		out = append(out, best)
	}
	if combo, ok := e.oneToMany(txn, entries); ok && combo.score > best.score {
		out = append(out, combo)
	}
	return out
}

// scoreSingle scores a 1:1 pairing. Entries outside the date window or the
// tolerance band are not candidates.
func (e *Engine) scoreSingle(txn BankTransaction, entry LedgerEntry) (candidate, bool) {
	gap := dayGap(txn.Date, entry.Date)
	if gap > e.cfg.DateWindowDays {
		return candidate{}, false
	}
	tol := e.cfg.Tolerance(txn.Amount)
	entryAmount := entry.SignedAmount()
	if txn.Amount.Sub(entryAmount).Abs().GreaterThan(tol) {
		return candidate{}, false
	}

	amount := amountCloseness(txn.Amount, entryAmount, tol)
	date := dateCloseness(gap, e.cfg.DateWindowDays)
	text := textSimilarity(txn.Description, entry.Description)
	score := e.cfg.score(amount, date, text)
	if score < e.cfg.LowThreshold {
		return candidate{}, false
	}

	return candidate{
		txnIDs:   []string{txn.TransactionID},
		entryIDs: []string{entry.EntryID},
		score:    score,
		rationale: fmt.Sprintf("amount gap %s (tolerance %s), %d day(s) apart, description similarity %.0f%%",
			txn.Amount.Sub(entryAmount).Abs().String(), tol.String(), gap, text*100),
	}, true
}

// oneToMany searches for a set of entries whose sum explains one transaction.
// Combined matches carry a penalty per extra leg and never reach EXCELLENT.
func (e *Engine) oneToMany(txn BankTransaction, entries []LedgerEntry) (candidate, bool) {
	window := make([]LedgerEntry, 0, len(entries))
	for _, en := range entries {
		if dayGap(txn.Date, en.Date) <= e.cfg.DateWindowDays && sameSign(txn.Amount, en.SignedAmount()) {
			window = append(window, en)
		}
	}
	combo, ok := findCombination(txn.Amount, window, e.cfg.MaxComboSize, e.cfg.Tolerance(txn.Amount))
	if !ok {
		return candidate{}, false
	}

	total := decimal.Zero
	maxGap := 0
	ids := make([]string, 0, len(combo))
	descs := make([]string, 0, len(combo))
	for _, en := range combo {
		total = total.Add(en.SignedAmount())
		if g := dayGap(txn.Date, en.Date); g > maxGap {
			maxGap = g
		}
		ids = append(ids, en.EntryID)
		descs = append(descs, en.Description)
	}

	tol := e.cfg.Tolerance(txn.Amount)
	amount := amountCloseness(txn.Amount, total, tol)
	date := dateCloseness(maxGap, e.cfg.DateWindowDays)
	text := textSimilarity(txn.Description, strings.Join(descs, " "))
	score := e.comboScore(amount, date, text, len(combo), e.cfg.ExcellentThreshold-1)
	if score < e.cfg.LowThreshold {
		return candidate{}, false
	}

	return candidate{
		txnIDs:   []string{txn.TransactionID},
		entryIDs: ids,
		score:    score,
		rationale: fmt.Sprintf("%d entries summing to %s against transaction %s (gap %s)",
			len(combo), total.String(), txn.Amount.String(), txn.Amount.Sub(total).Abs().String()),
	}, true
}

// manyToOne searches for a set of transactions whose sum explains one entry.
func (e *Engine) manyToOne(ctx context.Context, txns []BankTransaction, entries []LedgerEntry) []candidate {
	var out []candidate
	for _, entry := range entries {
		if ctx.Err() != nil {
			return nil
		}
		target := entry.SignedAmount()
		window := make([]BankTransaction, 0, len(txns))
		for _, t := range txns {
			if dayGap(entry.Date, t.Date) <= e.cfg.DateWindowDays && sameSign(target, t.Amount) {
				window = append(window, t)
			}
		}
		combo, ok := findTxnCombination(target, window, e.cfg.MaxComboSize, e.cfg.Tolerance(target))
		if !ok {
			continue
		}

		total := decimal.Zero
		maxGap := 0
		ids := make([]string, 0, len(combo))
		descs := make([]string, 0, len(combo))
		for _, t := range combo {
			total = total.Add(t.Amount)
			if g := dayGap(entry.Date, t.Date); g > maxGap {
				maxGap = g
			}
			ids = append(ids, t.TransactionID)
			descs = append(descs, t.Description)
		}

		tol := e.cfg.Tolerance(target)
		amount := amountCloseness(target, total, tol)
		date := dateCloseness(maxGap, e.cfg.DateWindowDays)
		text := textSimilarity(entry.Description, strings.Join(descs, " "))
		score := e.comboScore(amount, date, text, len(combo), e.cfg.ExcellentThreshold-1)
		if score < e.cfg.LowThreshold {
			continue
		}

		out = append(out, candidate{
			txnIDs:   ids,
			entryIDs: []string{entry.EntryID},
			score:    score,
			rationale: fmt.Sprintf("%d transactions summing to %s against entry %s (gap %s)",
				len(combo), total.String(), target.String(), target.Sub(total).Abs().String()),
		})
	}
	return out
}

// manyToMany pairs leftover groups that share a counterparty key when their
// sums agree. These are the weakest matches and are capped below GOOD.
func (e *Engine) manyToMany(txns []BankTransaction, entries []LedgerEntry) []candidate {
	txnGroups := map[string][]BankTransaction{}
	for _, t := range txns {
		if key := counterpartyKey(t.Description); key != "" {
			txnGroups[key] = append(txnGroups[key], t)
		}
	}
	entryGroups := map[string][]LedgerEntry{}
	for _, en := range entries {
		if key := counterpartyKey(en.Description); key != "" {
			entryGroups[key] = append(entryGroups[key], en)
		}
	}

	keys := make([]string, 0, len(txnGroups))
	for k := range txnGroups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []candidate
	for _, key := range keys {
		tg := txnGroups[key]
		eg := entryGroups[key]
		if len(tg) < 2 || len(eg) < 2 {
			continue
		}

		txnTotal := decimal.Zero
		txnIDs := make([]string, 0, len(tg))
		for _, t := range tg {
			txnTotal = txnTotal.Add(t.Amount)
			txnIDs = append(txnIDs, t.TransactionID)
		}
		entryTotal := decimal.Zero
		entryIDs := make([]string, 0, len(eg))
		for _, en := range eg {
			entryTotal = entryTotal.Add(en.SignedAmount())
			entryIDs = append(entryIDs, en.EntryID)
		}

		tol := e.cfg.Tolerance(txnTotal)
		if txnTotal.Sub(entryTotal).Abs().GreaterThan(tol) {
			continue
		}

		amount := amountCloseness(txnTotal, entryTotal, tol)
		score := e.comboScore(amount, 0.5, 1, len(tg)+len(eg), e.cfg.GoodThreshold-1)
		if score < e.cfg.LowThreshold {
			continue
		}
		out = append(out, candidate{
			txnIDs:   txnIDs,
			entryIDs: entryIDs,
			score:    score,
			rationale: fmt.Sprintf("group of %d transactions and %d entries for %q, totals %s vs %s",
				len(tg), len(eg), key, txnTotal.String(), entryTotal.String()),
		})
	}
	return out
}

// comboScore applies the multi-way penalty and ceiling to a raw score.
func (e *Engine) comboScore(amount, date, text float64, legs, ceiling int) int {
	score := e.cfg.score(amount, date, text)
	score -= (legs - 1) * e.cfg.ComboPenalty
	if score > ceiling {
		score = ceiling
	}
	if score < 0 {
		score = 0
	}
	return score
}

// build turns a claimed candidate into an immutable pending suggestion.
func (e *Engine) build(snap Snapshot, c candidate) Suggestion {
	mt := matchTypeFor(len(c.txnIDs), len(c.entryIDs))
	band := e.cfg.BandFor(c.score)
	return Suggestion{
		SuggestionID:         uuid.New().String(),
		CompanyID:            snap.CompanyID,
		BankAccountID:        snap.BankAccountID,
		TransactionIDs:       c.txnIDs,
		EntryIDs:             c.entryIDs,
		MatchType:            mt,
		Confidence:           c.score,
		Band:                 band,
		Rationale:            c.rationale,
		RequiresManualReview: mt != MatchSingle || (band != BandExcellent && band != BandGood),
		Status:               SuggestionPending,
		CreatedAt:            time.Now(),
	}
}

func claims(c candidate, usedTxns, usedEntries map[string]bool) bool {
	for _, id := range c.txnIDs {
		if usedTxns[id] {
			return true
		}
	}
	for _, id := range c.entryIDs {
		if usedEntries[id] {
			return true
		}
	}
	return false
}

func claim(c candidate, usedTxns, usedEntries map[string]bool) {
	for _, id := range c.txnIDs {
		usedTxns[id] = true
	}
	for _, id := range c.entryIDs {
		usedEntries[id] = true
	}
}

func unclaimedTxns(txns []BankTransaction, used map[string]bool) []BankTransaction {
	out := make([]BankTransaction, 0, len(txns))
	for _, t := range txns {
		if !used[t.TransactionID] {
			out = append(out, t)
		}
	}
	return out
}

func unclaimedEntries(entries []LedgerEntry, used map[string]bool) []LedgerEntry {
	out := make([]LedgerEntry, 0, len(entries))
	for _, en := range entries {
		if !used[en.EntryID] {
			out = append(out, en)
		}
	}
	return out
}

func sameSign(a, b decimal.Decimal) bool {
	return a.Sign() == b.Sign() && a.Sign() != 0
}

// counterpartyKey reduces a description to its leading tokens so recurring
// counterparties group together despite reference suffixes.
func counterpartyKey(description string) string {
	tokens := strings.Fields(normalizeDescription(description))
	kept := make([]string, 0, 2)
	for _, tok := range tokens {
		if len(tok) < 3 || isNumeric(tok) {
			continue
		}
		kept = append(kept, tok)
		if len(kept) == 2 {
			break
		}
	}
	return strings.Join(kept, " ")
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// findCombination searches entry subsets of size 2..maxSize whose signed sum
// lands within tolerance of the target. Depth-first with a same-sign bound.
func findCombination(target decimal.Decimal, entries []LedgerEntry, maxSize int, tolerance decimal.Decimal) ([]LedgerEntry, bool) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].SignedAmount().Abs().GreaterThan(entries[j].SignedAmount().Abs())
	})
	var pick func(start int, sum decimal.Decimal, chosen []LedgerEntry) ([]LedgerEntry, bool)
	limit := target.Abs().Add(tolerance)
	pick = func(start int, sum decimal.Decimal, chosen []LedgerEntry) ([]LedgerEntry, bool) {
		if len(chosen) >= 2 && target.Sub(sum).Abs().LessThanOrEqual(tolerance) {
			out := make([]LedgerEntry, len(chosen))
			copy(out, chosen)
			return out, true
		}
		if len(chosen) == maxSize {
			return nil, false
		}
		for i := start; i < len(entries); i++ {
			next := sum.Add(entries[i].SignedAmount())
			if next.Abs().GreaterThan(limit) {
				continue
			}
			if found, ok := pick(i+1, next, append(chosen, entries[i])); ok {
				return found, true
			}
		}
		return nil, false
	}
	return pick(0, decimal.Zero, nil)
}

func findTxnCombination(target decimal.Decimal, txns []BankTransaction, maxSize int, tolerance decimal.Decimal) ([]BankTransaction, bool) {
	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].Amount.Abs().GreaterThan(txns[j].Amount.Abs())
	})
	var pick func(start int, sum decimal.Decimal, chosen []BankTransaction) ([]BankTransaction, bool)
	limit := target.Abs().Add(tolerance)
	pick = func(start int, sum decimal.Decimal, chosen []BankTransaction) ([]BankTransaction, bool) {
		if len(chosen) >= 2 && target.Sub(sum).Abs().LessThanOrEqual(tolerance) {
			out := make([]BankTransaction, len(chosen))
			copy(out, chosen)
			return out, true
		}
		if len(chosen) == maxSize {
			return nil, false
		}
		for i := start; i < len(txns); i++ {
			next := sum.Add(txns[i].Amount)
			if next.Abs().GreaterThan(limit) {
				continue
			}
			if found, ok := pick(i+1, next, append(chosen, txns[i])); ok {
				return found, true
			}
		}
		return nil, false
	}
	return pick(0, decimal.Zero, nil)
}
