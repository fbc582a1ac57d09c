package rules

import "time"

// Defaults is the built-in rule set. Greeting precedes help so that inputs
// satisfying both resolve to the greeting; ping is exact so "shipping" does
// not trigger it.
func Defaults() []Rule {
	return []Rule{
		{
			Keywords: []string{"hi", "hello"},
			Response: Static("Hello, captain!"),
		},
		{
			Keywords: []string{"help"},
			Response: Static("Available commands: hi, help, time, ping. Anything else is forwarded to the backend."),
		},
		{
			Keywords: []string{"time", "clock"},
			Response: Dynamic(func() string {
				return "Current time: " + time.Now().Format("15:04:05")
			}),
		},
		{
			Keywords: []string{"ping"},
			Match:    Exact,
			Response: Static("pong"),
		},
	}
}

// Builtins maps config-referenced producer names to dynamic responders.
func Builtins() map[string]Dynamic {
	return map[string]Dynamic{
		"time": func() string {
			return "Current time: " + time.Now().Format("15:04:05")
		},
		"date": func() string {
			return "Today is " + time.Now().Format("Monday, 2 January 2006")
		},
	}
}
