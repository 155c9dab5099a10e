// Package menu drives the numbered console menus.
package menu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gerhard-ee/sqlcrud/internal/apperrors"
)

// Option is one numbered entry. Failure prefixes unexpected errors, e.g.
// "Error al insertar registro".
type Option struct {
	Label   string
	Failure string
	Run     func(ctx context.Context) error
}

// Menu shows the options, reads a choice and dispatches until the operator
// picks the final "Salir" entry, input ends or ctx is cancelled. All three
// paths close the session.
type Menu struct {
	console *Console
	title   []string
	width   int
	options []Option
	session io.Closer
	log     *logrus.Entry
}

// New builds a menu. The exit entry is appended after options.
func New(console *Console, title []string, width int, options []Option, session io.Closer, log *logrus.Logger) *Menu {
	return &Menu{
		console: console,
		title:   title,
		width:   width,
		options: options,
		session: session,
		log:     log.WithField("component", "menu"),
	}
}

// Run loops until exit. It returns nil on any graceful exit and the error
// when an operation fails fatally.
func (m *Menu) Run(ctx context.Context) error {
	exitChoice := len(m.options) + 1

	for {
		m.display()

		input, err := m.console.Prompt(ctx, fmt.Sprintf("Seleccione una opción (1-%d): ", exitChoice))
		if err != nil {
			m.interrupted(ctx)
			return nil
		}

		choice, err := strconv.Atoi(strings.TrimSpace(input))
		if err != nil {
			m.console.Failure("Error: Ingrese un número válido")
			continue
		}
		if choice == exitChoice {
			m.close()
			m.console.Println("Saliendo del programa...")
			m.console.Println()
			return nil
		}
		if choice < 1 || choice > exitChoice {
			m.console.Failure("Opción no válida. Ingrese un número entre 1 y %d", exitChoice)
			continue
		}

		opt := m.options[choice-1]
		m.log.WithField("option", opt.Label).Debug("Dispatching")

		err = opt.Run(ctx)
		switch {
		case err == nil:
		case ctx.Err() != nil || errors.Is(err, io.EOF):
			m.interrupted(ctx)
			return nil
		case apperrors.IsFatal(err):
			m.report(opt, err)
			m.close()
			return err
		default:
			m.report(opt, err)
		}
	}
}

func (m *Menu) display() {
	rule := strings.Repeat("=", m.width)

	m.console.Println()
	m.console.Println(rule)
	for _, line := range m.title {
		m.console.Heading("\t" + line)
	}
	m.console.Println(rule)
	for i, opt := range m.options {
		m.console.Printf("\t%d. %s\n", i+1, opt.Label)
	}
	m.console.Printf("\t%d. Salir\n", len(m.options)+1)
	m.console.Println(rule)
}

// report prints a recoverable failure and keeps the loop going.
func (m *Menu) report(opt Option, err error) {
	m.log.WithError(err).WithField("option", opt.Label).Info("Operation failed")

	switch {
	case errors.Is(err, apperrors.ErrValidation):
		m.console.Failure("Error: %s", apperrors.Message(err))
	case errors.Is(err, apperrors.ErrIntegrity):
		m.console.Failure("Error de integridad: El ID ya existe o datos inválidos")
	default:
		m.console.Failure("%s: %v", opt.Failure, err)
	}
}

func (m *Menu) interrupted(ctx context.Context) {
	m.console.Println()
	if ctx.Err() != nil {
		m.console.Println()
		m.console.Failure("Programa interrumpido por el usuario")
	}
	m.close()
}

func (m *Menu) close() {
	if err := m.session.Close(); err != nil {
		m.console.Failure("Error al cerrar conexión: %v", err)
		return
	}
	m.console.Success("Conexión cerrada correctamente")
}
