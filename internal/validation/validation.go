// Package validation is a small declarative rule engine. Rules are built with
// Must (errors), Should (warnings) and Could (conditional nesting) and are
// evaluated by Validate into a Result. Evaluation never mutates the entity.
package validation

// Check is a predicate over a value read from an entity
type Check[V any] func(V) bool

// Condition is a deferred rule that yields its findings when evaluated
type Condition func() Result

// identified is implemented by entities whose findings carry their id
type identified interface {
	ID() string
}

func idOf(entity any) string {
	if e, ok := entity.(identified); ok {
		return e.ID()
	}
	return ""
}

// Must reports msg as an error unless check holds for get(entity)
func Must[E, V any](entity E, get func(E) V, check Check[V], msg string) Condition {
	return func() Result {
		if check(get(entity)) {
			return Result{}
		}
		return Result{Errors: []Message{{ID: idOf(entity), Text: msg}}}
	}
}

// Should reports msg as a warning unless check holds for get(entity)
func Should[E, V any](entity E, get func(E) V, check Check[V], msg string) Condition {
	return func() Result {
		if check(get(entity)) {
			return Result{}
		}
		return Result{Warnings: []Message{{ID: idOf(entity), Text: msg}}}
	}
}

// Could evaluates nested only when check holds for get(entity)
func Could[E, V any](entity E, get func(E) V, check Check[V], nested ...Condition) Condition {
	return func() Result {
		if !check(get(entity)) {
			return Result{}
		}
		return Validate(nested...)
	}
}

// Error reports msg as an error for entity unconditionally
func Error(entity any, msg string) Condition {
	return func() Result {
		return Result{Errors: []Message{{ID: idOf(entity), Text: msg}}}
	}
}

// Nested wraps an already computed result, e.g. the validation of a child
func Nested(r Result) Condition {
	return func() Result { return r }
}

// Validate evaluates all conditions in order and concatenates their results
func Validate(conditions ...Condition) Result {
	result := Result{}
	for _, c := range conditions {
		if c == nil {
			continue
		}
		result = result.Concat(c())
	}
	return result
}
