package menu

import (
	"context"
	"io"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/gerhard-ee/sqlcrud/internal/crud"
)

const msgEstudianteNotFound = "No se encontró un estudiante con ese ID"

var estudianteColumns = []column{
	{"ID", 5},
	{"Nombre", 15},
	{"Apellido", 15},
	{"Email", 25},
	{"Teléfono", 12},
}

type estudiantesMenu struct {
	console *Console
	store   *crud.EstudianteStore
}

// NewEstudiantes builds the direct SQL menu over the Estudiantes table.
func NewEstudiantes(console *Console, store *crud.EstudianteStore, session io.Closer, log *logrus.Logger) *Menu {
	h := &estudiantesMenu{console: console, store: store}

	options := []Option{
		{Label: "Crear registro", Failure: "Error al insertar registro", Run: h.create},
		{Label: "Consultar registros", Failure: "Error al consultar registros", Run: h.list},
		{Label: "Consultar registro por ID", Failure: "Error al consultar registro", Run: h.show},
		{Label: "Actualizar registro", Failure: "Error al actualizar registro", Run: h.update},
		{Label: "Eliminar registro", Failure: "Error al eliminar registro", Run: h.remove},
	}
	return New(console, []string{"** SISTEMA CRUD DE ESTUDIANTES **"}, 50, options, session, log)
}

func (h *estudiantesMenu) create(ctx context.Context) error {
	h.console.Println()
	h.console.Println("--- CREAR NUEVO REGISTRO ---")

	rawID, err := h.console.Prompt(ctx, "Ingrese ID del Estudiante: ")
	if err != nil {
		return err
	}
	id, err := crud.ParseID("id", rawID)
	if err != nil {
		return err
	}

	answers, err := promptAll(ctx, h.console,
		"Ingrese Nombre del Estudiante: ",
		"Ingrese Apellido del Estudiante: ",
		"Ingrese Email del Estudiante: ",
		"Ingrese Teléfono del Estudiante: ",
	)
	if err != nil {
		return err
	}

	_, err = h.store.Insert(ctx, crud.Estudiante{
		ID:       id,
		Nombre:   answers[0],
		Apellido: answers[1],
		Email:    answers[2],
		Telefono: answers[3],
	})
	if err != nil {
		return err
	}

	h.console.Success("Registro insertado exitosamente")
	return nil
}

func (h *estudiantesMenu) list(ctx context.Context) error {
	records, err := h.store.List(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		h.console.Failure("No hay registros en la tabla Estudiantes")
		return nil
	}

	rows := make([][]string, len(records))
	for i, e := range records {
		rows[i] = []string{strconv.FormatInt(e.ID, 10), e.Nombre, e.Apellido, e.Email, e.Telefono}
	}
	h.console.table("--- LISTADO DE ESTUDIANTES ---", estudianteColumns, 75, rows)
	h.console.Printf("\nTotal de registros: %d\n\n", len(records))
	return nil
}

func (h *estudiantesMenu) show(ctx context.Context) error {
	id, err := promptID(ctx, h.console, "\nIngrese ID del Estudiante: ")
	if err != nil {
		return err
	}

	e, found, err := h.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		h.console.Failure(msgEstudianteNotFound)
		return nil
	}

	h.console.fields("--- DATOS DEL ESTUDIANTE ---", [][2]string{
		{"ID", strconv.FormatInt(e.ID, 10)},
		{"Nombre", e.Nombre},
		{"Apellido", e.Apellido},
		{"Email", orNA(e.Email)},
		{"Teléfono", orNA(e.Telefono)},
	})
	h.console.Println()
	return nil
}

func (h *estudiantesMenu) update(ctx context.Context) error {
	h.console.Println()
	h.console.Println("--- ACTUALIZAR REGISTRO ---")

	id, err := promptID(ctx, h.console, "Ingrese ID del Estudiante a actualizar: ")
	if err != nil {
		return err
	}
	email, err := h.console.Prompt(ctx, "Ingrese el nuevo Email del Estudiante: ")
	if err != nil {
		return err
	}

	out, err := h.store.UpdateEmail(ctx, id, email)
	if err != nil {
		return err
	}
	if out.Kind == crud.NotFound {
		h.console.Failure(msgEstudianteNotFound)
		return nil
	}
	h.console.Success("Registro actualizado exitosamente")
	return nil
}

func (h *estudiantesMenu) remove(ctx context.Context) error {
	h.console.Println()
	h.console.Println("--- ELIMINAR REGISTRO ---")

	id, err := promptID(ctx, h.console, "Ingrese ID del Estudiante a eliminar: ")
	if err != nil {
		return err
	}
	answer, err := h.console.Prompt(ctx, "¿Está seguro que desea eliminar al estudiante con ID "+strconv.FormatInt(id, 10)+"? (s/n): ")
	if err != nil {
		return err
	}

	out, err := h.store.Delete(ctx, id, answer)
	if err != nil {
		return err
	}

	switch out.Kind {
	case crud.Cancelled:
		h.console.Println("Operación cancelada")
	case crud.NotFound:
		h.console.Failure(msgEstudianteNotFound)
	default:
		h.console.Success("Registro eliminado exitosamente")
	}
	return nil
}
