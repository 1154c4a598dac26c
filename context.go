package authx

import "context"

type callerEvaluationKey struct{}

// CallerEvaluation represents the authorization view stored in a request
// context after a successful Authorize call.
type CallerEvaluation struct {
	Evaluation *Evaluation
	DevBypass  bool
}

// BindCallerEvaluation stores the evaluation inside the context for
// downstream consumers.
func BindCallerEvaluation(ctx context.Context, eval CallerEvaluation) context.Context {
	return context.WithValue(ctx, callerEvaluationKey{}, eval)
}

// CallerEvaluationFromContext retrieves an evaluation previously stored in
// the context.
func CallerEvaluationFromContext(ctx context.Context) (CallerEvaluation, bool) {
	if ctx == nil {
		return CallerEvaluation{}, false
	}
	value := ctx.Value(callerEvaluationKey{})
	if value == nil {
		return CallerEvaluation{}, false
	}
	eval, ok := value.(CallerEvaluation)
	return eval, ok
}
