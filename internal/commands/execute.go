package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Plan    func(PlanArgs) (Result, error)
	Done    func(DoneArgs) (Result, error)
	Overrun func(OverrunArgs) (Result, error)
	Explain func(ExplainArgs) (Result, error)
	Add     func(AddArgs) (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypePlan:
		if handlers.Plan == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Plan(*cmd.Plan)
	case TypeDone:
		if handlers.Done == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Done(*cmd.Done)
	case TypeOverrun:
		if handlers.Overrun == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Overrun(*cmd.Overrun)
	case TypeExplain:
		if handlers.Explain == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Explain(*cmd.Explain)
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Add(*cmd.Add)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}
