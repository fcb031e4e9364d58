package browser

import (
	"strconv"
	"strings"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"
)

// ObserveConsole registers a passive listener that forwards every browser
// console message and uncaught page exception to the harness log. It is
// observational only: the handler issues no browser commands and never blocks
// page execution.
func (s *Session) ObserveConsole(logger arbor.ILogger) {
	chromedp.ListenTarget(s.ctx, func(ev interface{}) {
		switch event := ev.(type) {
		case *runtime.EventConsoleAPICalled:
			msg := consoleText(event.Args)
			if msg == "" {
				return
			}
			switch event.Type {
			case runtime.APITypeError, runtime.APITypeWarning:
				logger.Warn().
					Str("source", "browser").
					Str("console_type", string(event.Type)).
					Msg(msg)
			default:
				logger.Info().
					Str("source", "browser").
					Str("console_type", string(event.Type)).
					Msg(msg)
			}
		case *runtime.EventExceptionThrown:
			if event.ExceptionDetails == nil {
				return
			}
			errorMsg := event.ExceptionDetails.Text
			if event.ExceptionDetails.Exception != nil && event.ExceptionDetails.Exception.Description != "" {
				errorMsg = event.ExceptionDetails.Exception.Description
			}
			logger.Warn().
				Str("source", "browser").
				Str("console_type", "exception").
				Msg(errorMsg)
		}
	})
}

// consoleText flattens console call arguments into a single line. String
// arguments arrive as quoted JSON values and are unquoted for readability;
// everything else is forwarded raw.
func consoleText(args []*runtime.RemoteObject) string {
	var parts []string
	for _, arg := range args {
		if arg == nil || arg.Value == nil {
			continue
		}
		raw := string(arg.Value)
		if unquoted, err := strconv.Unquote(raw); err == nil {
			raw = unquoted
		}
		parts = append(parts, raw)
	}
	return strings.Join(parts, " ")
}
