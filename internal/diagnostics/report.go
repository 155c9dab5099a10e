package diagnostics

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
)

// Printer renders reports for the operator.
type Printer struct {
	out  io.Writer
	ok   *color.Color
	fail *color.Color
	head *color.Color
}

// NewPrinter writes to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{
		out:  out,
		ok:   color.New(color.FgGreen),
		fail: color.New(color.FgRed),
		head: color.New(color.Bold),
	}
}

func (p *Printer) section(title string) {
	fmt.Fprintln(p.out)
	p.head.Fprintln(p.out, title)
	fmt.Fprintln(p.out, strings.Repeat("-", len([]rune(title))))
}

// Success prints a ✓ line.
func (p *Printer) Success(format string, a ...interface{}) {
	p.ok.Fprintf(p.out, "✓ "+format+"\n", a...)
}

// Failure prints a ✗ line.
func (p *Printer) Failure(format string, a ...interface{}) {
	p.fail.Fprintf(p.out, "✗ "+format+"\n", a...)
}

// Connection prints whatever part of r was filled in.
func (p *Printer) Connection(r *ConnectionReport) {
	p.section("Datos de conexión")
	keys := make([]string, 0, len(r.Connection))
	for k := range r.Connection {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(p.out, "  %-17s %s\n", k+":", r.Connection[k])
	}
	fmt.Fprintf(p.out, "  %-17s %s\n", "motor:", r.Engine)

	if r.Version == "" {
		return
	}
	p.section("Versión del servidor")
	fmt.Fprintf(p.out, "  %s\n", r.Version)

	if r.Tables == nil {
		return
	}
	p.section(fmt.Sprintf("Tablas (%d)", len(r.Tables)))
	for _, t := range r.Tables {
		fmt.Fprintf(p.out, "  - %s\n", t)
	}
	if len(r.Tables) == 0 {
		fmt.Fprintln(p.out, "  (ninguna)")
	}

	if r.Procedures != nil {
		p.section(fmt.Sprintf("Procedimientos almacenados (%d)", len(r.Procedures)))
		for _, proc := range r.Procedures {
			fmt.Fprintf(p.out, "  - %s\n", proc)
		}
		if len(r.Procedures) == 0 {
			fmt.Fprintln(p.out, "  (ninguno)")
		}
	}

	if r.ProbeTable != "" {
		p.section("Permisos de lectura")
		p.Success("SELECT sobre %s: %d fila(s) leída(s)", r.ProbeTable, r.ProbeRows)
	}

	if r.Identity != nil {
		p.section("Sesión")
		fmt.Fprintf(p.out, "  %-17s %s\n", "base de datos:", r.Identity.Database)
		fmt.Fprintf(p.out, "  %-17s %s\n", "usuario:", r.Identity.User)
		fmt.Fprintf(p.out, "  %-17s %s\n", "hora del servidor:", r.Identity.ServerTime)
	}
}

// Table prints the structure, keys, sample and summary of r.
func (p *Printer) Table(r *TableReport) {
	p.section(fmt.Sprintf("Estructura de %s", r.Table))
	fmt.Fprintf(p.out, "  %-25s %-15s %-8s %-8s %-9s %s\n", "Columna", "Tipo", "Longitud", "Nulo", "Identidad", "Defecto")
	for _, c := range r.Columns {
		fmt.Fprintf(p.out, "  %-25s %-15s %-8s %-8s %-9s %s\n",
			c.Name, c.Type, c.MaxLength, yesNo(c.Nullable), yesNo(c.Identity), c.Default)
	}

	p.section("Claves")
	if len(r.Keys) == 0 {
		fmt.Fprintln(p.out, "  (ninguna)")
	}
	for _, k := range r.Keys {
		fmt.Fprintf(p.out, "  %s: %s\n", k.Constraint, k.Column)
	}

	p.section(fmt.Sprintf("Primeros registros (%d en total)", r.RowCount))
	if r.Sample == nil || r.Sample.Empty() {
		fmt.Fprintln(p.out, "  (tabla vacía)")
	} else {
		for i, row := range r.Sample.Rows {
			cells := make([]string, len(r.Sample.Columns))
			for j, col := range r.Sample.Columns {
				cells[j] = col + "=" + row.Display(j)
			}
			fmt.Fprintf(p.out, "  %d. %s\n", i+1, strings.Join(cells, ", "))
		}
	}

	p.section("Resumen")
	fmt.Fprintf(p.out, "  Columnas: %d (%d admiten NULL)\n", len(r.Columns), r.Nullable())
	if id := r.IdentityColumn(); id != "" {
		fmt.Fprintf(p.out, "  Columna identidad: %s\n", id)
	} else {
		fmt.Fprintln(p.out, "  Columna identidad: ninguna")
	}
	fmt.Fprintf(p.out, "  Claves: %d\n", len(r.Keys))
	fmt.Fprintf(p.out, "  Registros: %d\n", r.RowCount)
}

func yesNo(b bool) string {
	if b {
		return "SI"
	}
	return "NO"
}
