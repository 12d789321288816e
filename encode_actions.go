package hindsight

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// DecodeActions decodes a stream of JSONL action data, one action per line,
// and returns the actions sorted by date ascending. Blank lines are skipped.
func DecodeActions(r io.Reader) ([]Action, error) {
	var actions []Action
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var a Action
		if err := json.Unmarshal(line, &a); err != nil {
			return nil, fmt.Errorf("format error on line %d %q: %w", n, string(line), err)
		}
		switch a.Kind {
		case Buy, Sell, Dividend, Interest, Deposit, Withdrawal:
		default:
			return nil, fmt.Errorf("unknown action %q on line %d", a.Kind, n)
		}
		if a.Date.IsZero() {
			return nil, fmt.Errorf("missing date on line %d %q", n, string(line))
		}
		actions = append(actions, a)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading actions: %w", err)
	}

	sort.SliceStable(actions, func(i, j int) bool { return actions[i].Date.Before(actions[j].Date) })
	return actions, nil
}

// EncodeActions writes actions as JSONL with the stable field order, one
// action per line, suitable for a line-based diff.
func EncodeActions(w io.Writer, actions []Action) error {
	for _, a := range actions {
		b, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("cannot encode action on %s: %w", a.Date, err)
		}
		if _, err := w.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return nil
}
