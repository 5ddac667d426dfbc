package render

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/dharsanguruparan/HostelDesk/internal/student"
)

var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`$`, `\$`,
	`&`, `\&`,
	`#`, `\#`,
	`%`, `\%`,
	`_`, `\_`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

// Escape makes s safe inside LaTeX body text.
func Escape(s string) string {
	return latexEscaper.Replace(s)
}

type row struct {
	Label string
	Value string
}

type section struct {
	Title string
	Rows  []row
}

type document struct {
	Name   string
	RollNo string
	Image  string
	Steps  []section
}

var stepTitles = map[int]string{
	1: "Student",
	2: "Parents",
	3: "Local Guardian",
	4: "Health and Siblings",
}

// The delimiters avoid clashing with LaTeX braces.
var latexTemplate = template.Must(template.New("student").Delims("[[", "]]").Parse(`\documentclass[a4paper,11pt]{article}
\usepackage[margin=2cm]{geometry}
\usepackage{graphicx}
\usepackage{longtable}
\begin{document}
\begin{center}
{\Large\bfseries Hostel Admission Record}\\[4pt]
{\large [[.Name]] ([[.RollNo]])}
\end{center}
\begin{flushright}
\includegraphics[width=3.5cm,height=4.5cm,keepaspectratio]{[[.Image]]}
\end{flushright}
[[range .Steps]]
\section*{[[.Title]]}
\begin{longtable}{p{0.38\textwidth}p{0.55\textwidth}}
[[range .Rows]][[.Label]] & [[.Value]] \\
[[end]]\end{longtable}
[[end]]
\end{document}
`))

// LaTeX renders the printable document of rec.
func LaTeX(rec student.Record) (string, error) {
	doc := document{
		Name:   Escape(rec.Name),
		RollNo: Escape(rec.RollNo),
		Image:  ImageFileName,
	}
	for step := 1; step <= 4; step++ {
		sec := section{Title: stepTitles[step]}
		for _, f := range student.StepFields(step) {
			sec.Rows = append(sec.Rows, row{Label: Escape(f.Label()), Value: Escape(rec.Get(f))})
		}
		doc.Steps = append(doc.Steps, sec)
	}
	var b strings.Builder
	if err := latexTemplate.Execute(&b, doc); err != nil {
		return "", fmt.Errorf("execute latex template: %w", err)
	}
	return b.String(), nil
}
