package recurring

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"pocket-ledger/internal/models"
)

// RuleUpdate is the new {lastGenerated, active} state of a rule after a run.
// Previous is the checkpoint the run started from; the store only applies the
// update while the rule still holds it.
type RuleUpdate struct {
	LastGenerated *time.Time
	Active        bool
	Previous      *time.Time
}

// Apply writes the update into rule.
func (u RuleUpdate) Apply(rule *models.RecurringTransaction) {
	rule.LastGenerated = u.LastGenerated
	rule.Active = u.Active
}

// Result is the output of one generation pass. Rules that need no change are
// absent from RuleUpdates.
type Result struct {
	NewTransactions []models.Transaction
	RuleUpdates     map[uuid.UUID]RuleUpdate
}

// Generator materializes due occurrences of recurring rules.
type Generator struct {
	// NewID names the transaction of one occurrence. Defaults to OccurrenceID.
	NewID func(ruleID uuid.UUID, at time.Time) uuid.UUID
}

func NewGenerator() *Generator {
	return &Generator{NewID: OccurrenceID}
}

// OccurrenceID is the stable id of the transaction a rule generates at a
// given instant. Overlapping runs produce the same ids, so inserting them
// if absent books every occurrence once.
func OccurrenceID(ruleID uuid.UUID, at time.Time) uuid.UUID {
	return uuid.NewSHA1(ruleID, []byte(at.UTC().Format(time.RFC3339)))
}

// GenerateDueOccurrences walks every active rule from its checkpoint up to the
// end of now's day and returns the transactions to append together with the
// rule updates to persist. Feeding the updates back into the rules and running
// again with the same now produces nothing new.
func (g *Generator) GenerateDueOccurrences(rules []models.RecurringTransaction, now time.Time) (Result, error) {
	res := Result{
		NewTransactions: []models.Transaction{},
		RuleUpdates:     make(map[uuid.UUID]RuleUpdate),
	}
	for _, rule := range rules {
		txs, update, changed, err := g.walk(rule, now)
		if err != nil {
			return Result{}, err
		}
		res.NewTransactions = append(res.NewTransactions, txs...)
		if changed {
			res.RuleUpdates[rule.ID] = update
		}
	}
	return res, nil
}

// MaterializeOnCreate generates the backlog of a freshly saved rule, start
// date included, and returns the rule with its checkpoint advanced.
func (g *Generator) MaterializeOnCreate(rule models.RecurringTransaction, now time.Time) ([]models.Transaction, models.RecurringTransaction, error) {
	txs, update, changed, err := g.walk(rule, now)
	if err != nil {
		return nil, rule, err
	}
	if changed {
		update.Apply(&rule)
	}
	return txs, rule, nil
}

func (g *Generator) walk(rule models.RecurringTransaction, now time.Time) ([]models.Transaction, RuleUpdate, bool, error) {
	if !rule.Active {
		return nil, RuleUpdate{}, false, nil
	}
	if !rule.Frequency.Valid() {
		return nil, RuleUpdate{}, false, fmt.Errorf("rule %s: %w: %q", rule.ID, ErrUnknownFrequency, rule.Frequency)
	}

	// An end date earlier today still lets today's occurrence through; the
	// rule is retired on the following run.
	if rule.EndDate != nil && rule.EndDate.Before(startOfDay(now)) {
		return nil, RuleUpdate{LastGenerated: rule.LastGenerated, Active: false, Previous: rule.LastGenerated}, true, nil
	}

	limit := EndOfDay(now)
	inRange := func(t time.Time) bool {
		return !t.After(limit) && (rule.EndDate == nil || !t.After(*rule.EndDate))
	}

	var txs []models.Transaction
	checkpoint := rule.StartDate
	if rule.LastGenerated != nil {
		checkpoint = *rule.LastGenerated
	} else if inRange(rule.StartDate) {
		txs = append(txs, g.materialize(rule, rule.StartDate, now))
	}

	anchor := rule.StartDate.Day()
	for {
		next, err := NextOccurrenceAnchored(checkpoint, rule.Frequency, anchor)
		if err != nil {
			return nil, RuleUpdate{}, false, fmt.Errorf("rule %s: %w", rule.ID, err)
		}
		if !inRange(next) {
			break
		}
		txs = append(txs, g.materialize(rule, next, now))
		checkpoint = next
	}

	if len(txs) == 0 {
		return nil, RuleUpdate{}, false, nil
	}
	last := txs[len(txs)-1].Date
	return txs, RuleUpdate{LastGenerated: &last, Active: true, Previous: rule.LastGenerated}, true, nil
}

func (g *Generator) materialize(rule models.RecurringTransaction, at, now time.Time) models.Transaction {
	newID := g.NewID
	if newID == nil {
		newID = OccurrenceID
	}
	ruleID := rule.ID
	return models.Transaction{
		ID:            newID(rule.ID, at),
		UserID:        rule.UserID,
		Amount:        rule.Amount,
		Type:          rule.Type,
		Category:      rule.Category,
		PaymentMethod: rule.PaymentMethod,
		Description:   rule.Description,
		Date:          at,
		RecurringID:   &ruleID,
		CreatedAt:     now,
	}
}
