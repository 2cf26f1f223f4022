package scenario

import "github.com/KOMKZ/go-yogan-event/errcode"

// ErrRuleFailed returned by listeners built from a "fail" rule
var ErrRuleFailed = errcode.Register(errcode.New(
	22, 1,
	"scenario",
	"error.scenario.rule_failed",
	"scenario rule failed",
))
