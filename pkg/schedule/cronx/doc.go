// Package cronx parses and evaluates an extended 5-field cron dialect used to
// gate update windows.
//
// Fields are "minute hour day-of-month month day-of-week". Each field accepts
// the usual "*", "?", integers, comma lists, ranges "a-b" and steps "a-b/n" or
// "*/n". On top of that:
//
//	day-of-month  L      last day of the month
//	day-of-week   nL     last occurrence of weekday n in the month
//	day-of-week   n#k    k-th occurrence of weekday n (k in 1..5)
//	day-of-week   7      Sunday, same as 0
//	month         %N     every N months counted from January 1970
//	month         L      last day of each listed month ("L" alone: every month)
//	hour          22-3   ranges may wrap past midnight
//
// An optional leading seconds field is accepted when it is "*".
//
// Unlike POSIX cron, day-of-month and day-of-week are combined with AND:
// "* 0-5 1-7,15-22 * 4" means Thursdays that fall on days 1-7 or 15-22.
//
// The minute field must be "*". An Expression only answers whether a given
// wall-clock instant lies inside the window, so sub-hour schedules make no
// sense; Parse accepts other minute values so validators can report them,
// and Matches never matches them.
//
// Plain field items are parsed by github.com/robfig/cron/v3 into bitmasks;
// the extensions are peeled off before that. Describe renders an expression
// as English for logs.
package cronx
