package rules

import "github.com/grinzing/jukei-line-yesterday/pkg/line"

// MaxBatch caps one expanded reply batch at the Messaging API reply limit.
const MaxBatch = 5

// step is the outcome of one expander transition: messages to emit for the
// current row, the next cursor position, and whether the walk is over.
type step struct {
	emit []line.Message
	next int
	done bool
}

// advance computes one transition of the expansion walk. It is pure: the same
// table, matched index, cursor, and batch length always produce the same step.
//
// The walk covers the matched trigger row and the contiguous continuation
// rows after it, and it never crosses into the sequence of a different
// trigger. A row that cannot render is skipped without ending the run it sits
// inside, unless the row after it starts a new sequence.
func advance(table []Rule, matched, cursor, batchLen int) step {
	if cursor >= len(table) || batchLen >= MaxBatch {
		return step{done: true}
	}

	rule := table[cursor]
	if cursor > matched && rule.IsTrigger() {
		return step{done: true}
	}

	msgs, ok := Render(rule)
	if !ok {
		next := cursor + 1
		if next > matched && (next >= len(table) || table[next].IsTrigger()) {
			return step{done: true}
		}
		return step{next: next}
	}

	last := cursor > matched && (cursor+1 >= len(table) || table[cursor+1].IsTrigger())
	return step{emit: msgs, next: cursor + 1, done: last}
}

// Expand renders the sequence starting at the matched rule into one ordered
// reply batch of at most MaxBatch messages. The walk is linear and
// deterministic; replaying it on an unchanged table yields identical output.
func Expand(table []Rule, matched int) []line.Message {
	if matched < 0 || matched >= len(table) {
		return nil
	}

	batch := make([]line.Message, 0, MaxBatch)
	for cursor := matched; ; {
		s := advance(table, matched, cursor, len(batch))
		batch = append(batch, s.emit...)
		if len(batch) > MaxBatch {
			// A media row can emit two messages right at the cap.
			batch = batch[:MaxBatch]
		}
		if s.done {
			return batch
		}
		cursor = s.next
	}
}
