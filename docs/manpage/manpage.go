// Package manpage generates a roff-formatted man page for vmas.
//
// Flags and keybindings are taken from the code so the page tracks the build.
//
// Usage:
//
//	vmas -man | man -l -
//	vmas -man > ~/.local/share/man/man1/vmas.1
package manpage

import (
	"fmt"
	"strings"
	"time"

	"github.com/GameboyEsc95/VMAS/display/tui"
)

// Flag documents one command-line flag.
type Flag struct {
	Name string
	Arg  string
	Desc string
}

// Generate produces a complete roff-formatted man(1) page for vmas. The
// version, commit, and date parameters come from the build-time linker
// variables.
func Generate(version, commit, date string, flags []Flag) string {
	var b strings.Builder

	writeHeader(&b, version)
	writeName(&b)
	writeSynopsis(&b)
	writeDescription(&b)
	writeOptions(&b, flags)
	writeKeybindings(&b)
	writeFiles(&b)
	writeEnvironment(&b)
	writeExamples(&b)
	writeExitStatus(&b)
	writeSeeAlso(&b)
	writeFooter(&b, version, commit, date)

	return b.String()
}

// roffEscape escapes special roff characters in a string.
func roffEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `-`, `\-`)
	if strings.HasPrefix(s, ".") || strings.HasPrefix(s, "'") {
		s = `\&` + s
	}
	return s
}

func writeHeader(b *strings.Builder, version string) {
	month := time.Now().Format("January 2006")
	fmt.Fprintf(b, ".TH VMAS 1 \"%s\" \"vmas %s\" \"User Commands\"\n", month, version)
}

func writeName(b *strings.Builder) {
	b.WriteString(`.SH NAME
vmas \- resident system metrics sampler
`)
}

func writeSynopsis(b *strings.Builder) {
	b.WriteString(`.SH SYNOPSIS
.B vmas
[\fIOPTIONS\fR]
.br
.B vmas \-report
\fIFILE\fR.csv ...
`)
}

func writeDescription(b *strings.Builder) {
	b.WriteString(`.SH DESCRIPTION
.B vmas
samples CPU, memory and disk utilization and the busiest processes at a
fixed interval until it is stopped.
.PP
Every sample is shown on the console. Every sixtieth sample is appended to a
CSV log named after the local date. Once the rolling buffer of recent CPU
values is full, a line chart of it is redrawn on every sample when a display
is available.
.PP
On even days of the month, from minute one of any hour, the first sample of
the day runs the report generator over the two newest logs. It runs at most
once per day.
`)
}

func writeOptions(b *strings.Builder, flags []Flag) {
	b.WriteString(".SH OPTIONS\n")
	for _, f := range flags {
		if f.Arg != "" {
			fmt.Fprintf(b, ".TP\n.BI \\-%s \" %s\"\n%s\n", roffEscape(f.Name), f.Arg, roffEscape(f.Desc))
		} else {
			fmt.Fprintf(b, ".TP\n.B \\-%s\n%s\n", roffEscape(f.Name), roffEscape(f.Desc))
		}
	}
}

func writeKeybindings(b *strings.Builder) {
	b.WriteString(`.SH KEYBINDINGS
Active in the dashboard (\fB\-tui\fR).
`)
	for _, group := range tui.Bindings() {
		for _, k := range group {
			fmt.Fprintf(b, ".TP\n.B %s\n%s\n", roffEscape(strings.Join(k.Keys(), ", ")), k.Help().Desc)
		}
	}
}

func writeFiles(b *strings.Builder) {
	b.WriteString(`.SH FILES
.TP
.I ~/.config/vmas/config.yaml
Configuration. A \fI.toml\fR path is read as TOML.
.TP
.I logs/YYYY\-MM\-DD.csv
Durable sample log, one per local date.
.TP
.I usage_graph.png
Chart of the rolling buffer.
.TP
.I reports/
PDF and markdown reports and charts written by \fB\-report\fR.
.TP
.I ~/.local/state/vmas/
Trigger state, health report, latest sample and PID file.
`)
}

func writeEnvironment(b *strings.Builder) {
	b.WriteString(`.SH ENVIRONMENT
Variables may also be set in a \fI.env\fR file in the working directory.
`)
	vars := []struct{ name, desc string }{
		{"VMAS_INTERVAL", "Sampling interval, e.g. 5s."},
		{"VMAS_FLUSH_EVERY", "Append every Nth sample to the log."},
		{"VMAS_LOG_DIR", "Directory for CSV logs."},
		{"VMAS_REPORT_COMMAND", "Report generator command line."},
		{"VMAS_CHART_PATH", "Chart output path."},
		{"VMAS_LOG_LEVEL", "debug, info, warn or error."},
		{"VMAS_SQLITE_PATH", "Enable the SQLite mirror at this path."},
		{"NO_COLOR", "Disable colored output."},
		{"DISPLAY, WAYLAND_DISPLAY", "Presence enables chart rendering on Linux."},
	}
	for _, v := range vars {
		fmt.Fprintf(b, ".TP\n.B %s\n%s\n", roffEscape(v.name), roffEscape(v.desc))
	}
}

func writeExamples(b *strings.Builder) {
	b.WriteString(`.SH EXAMPLES
Run with the dashboard:
.PP
.RS
vmas \-tui
.RE
.PP
Summarize two logs:
.PP
.RS
vmas \-report logs/2024\-03\-14.csv logs/2024\-03\-13.csv
.RE
.PP
Install as a user service:
.PP
.RS
vmas \-systemd\-unit > ~/.config/systemd/user/vmas.service
.RE
`)
}

func writeExitStatus(b *strings.Builder) {
	b.WriteString(`.SH EXIT STATUS
.TP
.B 0
Success, or a clean stop on SIGINT or SIGTERM.
.TP
.B 1
Startup failure, a failed report file, or an unhealthy \fB\-health\fR check.
`)
}

func writeSeeAlso(b *strings.Builder) {
	b.WriteString(`.SH SEE ALSO
.BR systemctl (1),
.BR sqlite3 (1)
`)
}

func writeFooter(b *strings.Builder, version, commit, date string) {
	fmt.Fprintf(b, ".SH VERSION\nvmas %s (%s) built %s\n", roffEscape(version), roffEscape(commit), roffEscape(date))
}
