package menu

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/gerhard-ee/sqlcrud/internal/crud"
)

var (
	alumnoColumns = []column{
		{"ID", 5},
		{"Nombre", 15},
		{"Apellido", 15},
		{"F. Nac.", 12},
		{"Teléfono", 15},
		{"Lugar", 20},
	}
	// Search results leave out the birthplace.
	busquedaColumns = alumnoColumns[:5]
)

type alumnosMenu struct {
	console *Console
	store   *crud.AlumnoStore
}

// NewAlumnos builds the stored procedure menu over the Alumno table.
func NewAlumnos(console *Console, store *crud.AlumnoStore, session io.Closer, log *logrus.Logger) *Menu {
	h := &alumnosMenu{console: console, store: store}

	options := []Option{
		{Label: "Crear nuevo alumno", Failure: "Error al insertar alumno", Run: h.create},
		{Label: "Consultar todos los alumnos", Failure: "Error al consultar alumnos", Run: h.list},
		{Label: "Consultar alumno por ID", Failure: "Error al consultar alumno", Run: h.show},
		{Label: "Buscar alumnos por nombre", Failure: "Error al buscar alumnos", Run: h.search},
		{Label: "Actualizar datos del alumno", Failure: "Error al actualizar alumno", Run: h.update},
		{Label: "Eliminar alumno", Failure: "Error al eliminar alumno", Run: h.remove},
		{Label: "Ver estadísticas", Failure: "Error al obtener estadísticas", Run: h.stats},
	}
	title := []string{
		"** SISTEMA CRUD DE ALUMNOS **",
		"** USANDO STORE PROCEDURES **",
	}
	return New(console, title, 60, options, session, log)
}

func (h *alumnosMenu) create(ctx context.Context) error {
	h.console.Println()
	h.console.Println("--- CREAR NUEVO ALUMNO ---")

	names, err := promptAll(ctx, h.console,
		"Ingrese Nombre del Alumno: ",
		"Ingrese Apellido del Alumno: ",
	)
	if err != nil {
		return err
	}
	if names[0] == "" || names[1] == "" {
		h.console.Failure("Error: %s", crud.MsgNameRequired)
		return nil
	}

	rawDate, err := h.console.Prompt(ctx, "Ingrese Fecha de Nacimiento (YYYY-MM-DD) o dejar en blanco: ")
	if err != nil {
		return err
	}
	fecha, err := crud.OptionalDate("fecha_nacimiento", rawDate)
	if err != nil {
		return err
	}

	optional, err := promptAll(ctx, h.console,
		"Ingrese Lugar de Nacimiento o dejar en blanco: ",
		"Ingrese Dirección o dejar en blanco: ",
		"Ingrese Teléfono o dejar en blanco: ",
		"Ingrese Información Escolar o dejar en blanco: ",
		"Ingrese Información de Salud o dejar en blanco: ",
	)
	if err != nil {
		return err
	}

	out, err := h.store.Insert(ctx, crud.Alumno{
		Nombre:          names[0],
		Apellido:        names[1],
		FechaNacimiento: fecha,
		LugarNacimiento: crud.OptionalString(optional[0]),
		Direccion:       crud.OptionalString(optional[1]),
		Telefono:        crud.OptionalString(optional[2]),
		InfoEscolar:     crud.OptionalString(optional[3]),
		InfoSalud:       crud.OptionalString(optional[4]),
	})
	if err != nil {
		return err
	}

	if out.Kind == crud.Applied {
		h.console.Success("Alumno registrado exitosamente con ID: %d", out.ID)
	} else {
		h.console.Failure("Error: %s", out.Message)
	}
	return nil
}

func (h *alumnosMenu) list(ctx context.Context) error {
	records, err := h.store.List(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		h.console.Println()
		h.console.Failure("No hay alumnos registrados en la base de datos")
		return nil
	}

	rows := make([][]string, len(records))
	for i, a := range records {
		rows[i] = []string{
			strconv.FormatInt(a.ID, 10),
			a.Nombre,
			a.Apellido,
			crud.FormatDate(a.FechaNacimiento),
			crud.OrNA(a.Telefono),
			crud.OrNA(a.LugarNacimiento),
		}
	}
	h.console.table("--- LISTADO DE ALUMNOS ---", alumnoColumns, 100, rows)
	h.console.Printf("\nTotal de alumnos: %d\n\n", len(records))
	return nil
}

func (h *alumnosMenu) show(ctx context.Context) error {
	id, err := promptID(ctx, h.console, "\nIngrese ID del Alumno: ")
	if err != nil {
		return err
	}

	a, found, err := h.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		h.notFound(id)
		return nil
	}

	h.console.fields("--- DATOS DEL ALUMNO ---", [][2]string{
		{"ID", strconv.FormatInt(a.ID, 10)},
		{"Nombre", a.Nombre},
		{"Apellido", a.Apellido},
		{"Fecha de Nacimiento", crud.FormatDate(a.FechaNacimiento)},
		{"Lugar de Nacimiento", crud.OrNA(a.LugarNacimiento)},
		{"Dirección", crud.OrNA(a.Direccion)},
		{"Teléfono", crud.OrNA(a.Telefono)},
		{"Información Escolar", crud.OrNA(a.InfoEscolar)},
		{"Información de Salud", crud.OrNA(a.InfoSalud)},
	})
	h.console.Println()
	return nil
}

func (h *alumnosMenu) search(ctx context.Context) error {
	terms, err := promptAll(ctx, h.console, "\nIngrese nombre o apellido a buscar: ")
	if err != nil {
		return err
	}
	term := terms[0]

	records, err := h.store.Search(ctx, term)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		h.console.Println()
		h.console.Failure("No se encontraron alumnos con '%s'", term)
		return nil
	}

	rows := make([][]string, len(records))
	for i, a := range records {
		rows[i] = []string{
			strconv.FormatInt(a.ID, 10),
			a.Nombre,
			a.Apellido,
			crud.FormatDate(a.FechaNacimiento),
			crud.OrNA(a.Telefono),
		}
	}
	h.console.table(fmt.Sprintf("--- RESULTADOS DE BÚSQUEDA: '%s' ---", term), busquedaColumns, 70, rows)
	h.console.Printf("\nTotal encontrado: %d\n\n", len(records))
	return nil
}

func (h *alumnosMenu) update(ctx context.Context) error {
	h.console.Println()
	h.console.Println("--- ACTUALIZAR ALUMNO ---")

	id, err := promptID(ctx, h.console, "Ingrese ID del Alumno a actualizar: ")
	if err != nil {
		return err
	}

	a, found, err := h.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		h.notFound(id)
		return nil
	}

	h.console.Printf("\nAlumno encontrado: %s\n", a.FullName())
	h.console.Println("\nIngrese los datos a actualizar (dejar en blanco para no cambiar):")

	names, err := promptAll(ctx, h.console, "Nuevo Nombre: ", "Nuevo Apellido: ")
	if err != nil {
		return err
	}
	rawDate, err := h.console.Prompt(ctx, "Nueva Fecha de Nacimiento (YYYY-MM-DD): ")
	if err != nil {
		return err
	}
	fecha, err := crud.OptionalDate("fecha_nacimiento", rawDate)
	if err != nil {
		return err
	}
	rest, err := promptAll(ctx, h.console,
		"Nuevo Lugar de Nacimiento: ",
		"Nueva Dirección: ",
		"Nuevo Teléfono: ",
		"Nueva Información Escolar: ",
		"Nueva Información de Salud: ",
	)
	if err != nil {
		return err
	}

	out, err := h.store.Update(ctx, id, crud.AlumnoChanges{
		Nombre:          crud.OptionalString(names[0]),
		Apellido:        crud.OptionalString(names[1]),
		FechaNacimiento: fecha,
		LugarNacimiento: crud.OptionalString(rest[0]),
		Direccion:       crud.OptionalString(rest[1]),
		Telefono:        crud.OptionalString(rest[2]),
		InfoEscolar:     crud.OptionalString(rest[3]),
		InfoSalud:       crud.OptionalString(rest[4]),
	})
	if err != nil {
		return err
	}
	h.report(out)
	return nil
}

func (h *alumnosMenu) remove(ctx context.Context) error {
	h.console.Println()
	h.console.Println("--- ELIMINAR ALUMNO ---")

	id, err := promptID(ctx, h.console, "Ingrese ID del Alumno a eliminar: ")
	if err != nil {
		return err
	}

	a, found, err := h.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		h.notFound(id)
		return nil
	}

	answer, err := h.console.Prompt(ctx, fmt.Sprintf("¿Está seguro que desea eliminar a %s? (s/n): ", a.FullName()))
	if err != nil {
		return err
	}

	out, err := h.store.Delete(ctx, id, answer)
	if err != nil {
		return err
	}
	h.report(out)
	return nil
}

func (h *alumnosMenu) stats(ctx context.Context) error {
	s, found, err := h.store.Stats(ctx)
	if err != nil {
		return err
	}
	if !found {
		h.console.Println()
		h.console.Failure("No hay datos para mostrar")
		return nil
	}

	h.console.fields("--- ESTADÍSTICAS DE ALUMNOS ---", [][2]string{
		{"Total de Alumnos", strconv.FormatInt(s.Total, 10)},
		{"Años de Nacimiento Diferentes", strconv.FormatInt(s.AniosNacimiento, 10)},
		{"Alumno más Viejo", crud.OrNA(s.MasViejo)},
		{"Alumno más Joven", crud.OrNA(s.MasJoven)},
		{"Lugares de Nacimiento Diferentes", strconv.FormatInt(s.LugaresNacimiento, 10)},
		{"Alumnos con Teléfono", strconv.FormatInt(s.ConTelefono, 10)},
		{"Alumnos con Información Escolar", strconv.FormatInt(s.ConInfoEscolar, 10)},
		{"Alumnos con Información de Salud", strconv.FormatInt(s.ConInfoSalud, 10)},
	})
	h.console.Println()
	return nil
}

func (h *alumnosMenu) report(out crud.Outcome) {
	switch out.Kind {
	case crud.Applied:
		h.console.Success("%s", out.Message)
	case crud.Cancelled:
		h.console.Println("Operación cancelada")
	case crud.NotFound:
		h.notFound(out.ID)
	default:
		h.console.Failure("Error: %s", out.Message)
	}
}

func (h *alumnosMenu) notFound(id int64) {
	h.console.Failure("No se encontró alumno con ID %d", id)
}
