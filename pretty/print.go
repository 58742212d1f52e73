/*
 * Ferrite - verifier for the Ferrite typestate intermediate representation
 *
 * Copyright Ferrite contributors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package pretty

import (
	"fmt"
	"io"
	"strings"

	"github.com/logrusorgru/aurora/v4"

	"github.com/ferrite-lang/ferrite/errors"
	"github.com/ferrite-lang/ferrite/sema"
)

func colorizeError(message string) string {
	return aurora.Colorize(message, aurora.RedFg|aurora.BrightFg|aurora.BoldFm).String()
}

func colorizeNote(message string) string {
	return aurora.Colorize(message, aurora.CyanFg|aurora.BoldFm).String()
}

func colorizeMessage(message string) string {
	return aurora.Bold(message).String()
}

func colorizeMeta(meta string) string {
	return aurora.Blue(meta).String()
}

const errorPrefix = "error"
const positionPrefix = "-->"
const rulePrefix = "rule"

// ErrorPrettyPrinter renders verification failures the way compilers do:
// a one-line message, the node the diagnostic refers to, and any
// secondary messages and notes indented below.
type ErrorPrettyPrinter struct {
	writer        io.Writer
	useColor      bool
	writtenErrors int
}

func NewErrorPrettyPrinter(writer io.Writer, useColor bool) ErrorPrettyPrinter {
	return ErrorPrettyPrinter{
		writer:   writer,
		useColor: useColor,
	}
}

func (p *ErrorPrettyPrinter) writeString(str string) error {
	_, err := p.writer.Write([]byte(str))
	return err
}

// PrettyPrintError writes the error, recursing into child errors of
// aggregates, separated by blank lines.
func (p *ErrorPrettyPrinter) PrettyPrintError(err error) error {
	if parentErr, ok := err.(errors.ParentError); ok {
		for _, childErr := range parentErr.ChildErrors() {
			printErr := p.PrettyPrintError(childErr)
			if printErr != nil {
				return printErr
			}
		}
		return nil
	}

	if p.writtenErrors > 0 {
		writeErr := p.writeString("\n")
		if writeErr != nil {
			return writeErr
		}
	}
	p.writtenErrors++

	return p.prettyPrintError(err)
}

func (p *ErrorPrettyPrinter) prettyPrintError(err error) error {
	var sb strings.Builder

	message := err.Error()

	prefix := errorPrefix
	if p.useColor {
		prefix = colorizeError(prefix)
		message = colorizeMessage(message)
	}
	sb.WriteString(prefix)
	sb.WriteString(": ")
	sb.WriteString(message)
	sb.WriteString("\n")

	if positioned, ok := err.(sema.HasPosition); ok {
		pos := positioned.Position()
		p.writePosition(&sb, pos)
	}

	if semanticErr, ok := err.(sema.SemanticError); ok {
		rule := fmt.Sprintf("%s: %s", rulePrefix, semanticErr.RuleName())
		if p.useColor {
			rule = colorizeMeta(rule)
		}
		sb.WriteString(" ")
		sb.WriteString(rule)
		sb.WriteString("\n")
	}

	if secondaryErr, ok := err.(errors.SecondaryError); ok {
		message := secondaryErr.SecondaryError()
		if p.useColor {
			message = colorizeNote(message)
		}
		for _, line := range strings.Split(message, "\n") {
			sb.WriteString(" = ")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	if errNotes, ok := err.(errors.ErrorNotes); ok {
		for _, note := range errNotes.ErrorNotes() {
			message := note.Message()
			if p.useColor {
				message = colorizeNote(message)
			}
			sb.WriteString(" = note: ")
			sb.WriteString(message)
			sb.WriteString("\n")
		}
	}

	return p.writeString(sb.String())
}

func (p *ErrorPrettyPrinter) writePosition(sb *strings.Builder, pos sema.Pos) {
	location := fmt.Sprintf("%s %s", positionPrefix, pos)
	if p.useColor {
		location = colorizeMeta(location)
	}
	sb.WriteString(" ")
	sb.WriteString(location)
	sb.WriteString("\n")
}
