package streamsvc

import (
	"encoding/json"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/rzbill/vesta/internal/vesting"
)

// celFilter wraps a compiled CEL program. When disabled (empty expression),
// Eval always returns true.
type celFilter struct {
	prog    cel.Program
	enabled bool
}

func compileFilter(expr string, vars ...cel.EnvOption) (celFilter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return celFilter{enabled: false}, nil
	}
	env, err := cel.NewEnv(append([]cel.EnvOption{cel.CrossTypeNumericComparisons(true)}, vars...)...)
	if err != nil {
		return celFilter{}, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return celFilter{}, iss.Err()
	}
	checked, iss2 := env.Check(ast)
	if iss2 != nil && iss2.Err() != nil {
		return celFilter{}, iss2.Err()
	}
	prog, err := env.Program(checked)
	if err != nil {
		return celFilter{}, err
	}
	return celFilter{prog: prog, enabled: true}, nil
}

func (f celFilter) eval(activation map[string]any) bool {
	if !f.enabled {
		return true
	}
	out, _, err := f.prog.Eval(activation)
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}

// newStreamFilter compiles a filter over stream fields, e.g.
// `token == "USDC" && balance > 0u` or `end_ms < now_ms`.
func newStreamFilter(expr string) (celFilter, error) {
	return compileFilter(expr,
		cel.Variable("id", cel.StringType),
		cel.Variable("sender", cel.StringType),
		cel.Variable("owner", cel.StringType),
		cel.Variable("token", cel.StringType),
		cel.Variable("balance", cel.UintType),
		cel.Variable("deposit", cel.UintType),
		cel.Variable("claimed", cel.UintType),
		cel.Variable("start_ms", cel.UintType),
		cel.Variable("end_ms", cel.UintType),
		cel.Variable("cliff_ms", cel.UintType),
		cel.Variable("tick_size", cel.UintType),
		cel.Variable("segments", cel.IntType),
		cel.Variable("now_ms", cel.UintType),
	)
}

// evalStream evaluates the filter against one stream at instant now.
func (f celFilter) evalStream(s *vesting.Stream, nowMs uint64) bool {
	if !f.enabled {
		return true
	}
	return f.eval(map[string]any{
		"id":        s.ID.String(),
		"sender":    s.Sender,
		"owner":     s.Owner,
		"token":     s.Token,
		"balance":   s.Balance,
		"deposit":   s.InitialDeposit,
		"claimed":   s.Claimed(),
		"start_ms":  s.StartTime,
		"end_ms":    s.EndTime,
		"cliff_ms":  s.Cliff,
		"tick_size": s.TickSize,
		"segments":  int64(len(s.Segments)),
		"now_ms":    nowMs,
	})
}

// newEventFilter compiles a filter over emitted records, e.g.
// `event_type == "stream_claimed" && json.amount > 100`.
func newEventFilter(expr string) (celFilter, error) {
	return compileFilter(expr,
		cel.Variable("seq", cel.UintType),
		cel.Variable("ts_ms", cel.UintType),
		cel.Variable("event_type", cel.StringType),
		cel.Variable("json", cel.DynType),
	)
}

// evalEvent evaluates the filter against one decoded record.
func (f celFilter) evalEvent(seq, tsMs uint64, eventType string, payload []byte) bool {
	if !f.enabled {
		return true
	}
	var jsonObj any
	_ = json.Unmarshal(payload, &jsonObj)
	return f.eval(map[string]any{
		"seq":        seq,
		"ts_ms":      tsMs,
		"event_type": eventType,
		"json":       jsonObj,
	})
}
