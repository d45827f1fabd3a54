// Package registry persiste las impresoras registradas en un archivo CSV.
package registry

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	ErrNotFound          = errors.New("printer not found")
	ErrDuplicateNickname = errors.New("nickname already registered")
	ErrMissingField      = errors.New("missing required field")
)

var header = []string{"machine_name", "nickname", "ip", "type", "brand", "api"}

// FieldAliases lista los nombres aceptados para cada columna, el canónico
// primero. Incluye los encabezados del printers.csv del servicio anterior
// (Machine_Name, Apelido, IP, Tipo, Marca, api).
var FieldAliases = map[string][]string{
	"machine_name": {"machine_name", "Machine_Name"},
	"nickname":     {"nickname", "Apelido"},
	"ip":           {"ip", "ip_address", "IP"},
	"type":         {"type", "Tipo"},
	"brand":        {"brand", "Marca"},
	"api":          {"api", "API"},
}

// ColumnFor resuelve un encabezado o alias a su columna canónica, sin
// distinguir mayúsculas.
func ColumnFor(name string) (string, bool) {
	name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))

	for _, column := range header {
		for _, alias := range FieldAliases[column] {
			if strings.EqualFold(alias, name) {
				return column, true
			}
		}
	}

	return "", false
}

// PrinterRecord es una fila del registro. Nickname es la clave única.
type PrinterRecord struct {
	MachineName string `json:"machine_name"`
	Nickname    string `json:"nickname"`
	IP          string `json:"ip"`
	Type        string `json:"type"`
	Brand       string `json:"brand"`
	API         string `json:"api"`
}

func (r PrinterRecord) field(column string) string {
	switch column {
	case "machine_name":
		return r.MachineName
	case "nickname":
		return r.Nickname
	case "ip":
		return r.IP
	case "type":
		return r.Type
	case "brand":
		return r.Brand
	case "api":
		return r.API
	}

	return ""
}

// rowFor ordena los campos según el encabezado del archivo; columnas
// desconocidas quedan vacías.
func (r PrinterRecord) rowFor(cols []string) []string {
	row := make([]string, len(cols))
	for i, c := range cols {
		if column, ok := ColumnFor(c); ok {
			row[i] = r.field(column)
		}
	}

	return row
}

func (r PrinterRecord) normalized() PrinterRecord {
	return PrinterRecord{
		MachineName: strings.TrimSpace(r.MachineName),
		Nickname:    strings.TrimSpace(r.Nickname),
		IP:          strings.TrimSpace(r.IP),
		Type:        strings.TrimSpace(r.Type),
		Brand:       strings.TrimSpace(r.Brand),
		API:         strings.TrimSpace(r.API),
	}
}

// Validate verifica que todos los campos estén presentes.
func (r PrinterRecord) Validate() error {
	fields := map[string]string{
		"machine_name": r.MachineName,
		"nickname":     r.Nickname,
		"ip":           r.IP,
		"type":         r.Type,
		"brand":        r.Brand,
		"api":          r.API,
	}

	for _, name := range header {
		if strings.TrimSpace(fields[name]) == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, name)
		}
	}

	return nil
}

// Registry es un registro de impresoras respaldado por un CSV.
type Registry struct {
	path string
	mu   sync.Mutex
}

// New crea un registro sobre path. El archivo se crea en el primer Add.
func New(path string) *Registry {
	return &Registry{path: path}
}

// Path retorna la ruta del archivo CSV.
func (r *Registry) Path() string {
	return r.path
}

// Add agrega una impresora al final del archivo.
func (r *Registry) Add(rec PrinterRecord) error {
	rec = rec.normalized()
	if err := rec.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, cols, err := r.readAll()
	if err != nil {
		return err
	}

	for _, p := range existing {
		if p.Nickname == rec.Nickname {
			return fmt.Errorf("%w: %s", ErrDuplicateNickname, rec.Nickname)
		}
	}

	if dir := filepath.Dir(r.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create registry directory: %w", err)
		}
	}

	file, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open registry: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat registry: %w", err)
	}

	w := csv.NewWriter(file)

	if info.Size() == 0 || cols == nil {
		cols = header
		if err := w.Write(cols); err != nil {
			return fmt.Errorf("write registry header: %w", err)
		}
	}

	if err := w.Write(rec.rowFor(cols)); err != nil {
		return fmt.Errorf("write registry row: %w", err)
	}

	w.Flush()

	return w.Error()
}

// List retorna todas las impresoras en el orden del archivo.
func (r *Registry) List() ([]PrinterRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	printers, _, err := r.readAll()

	return printers, err
}

// Get busca una impresora por apodo.
func (r *Registry) Get(nickname string) (PrinterRecord, error) {
	printers, err := r.List()
	if err != nil {
		return PrinterRecord{}, err
	}

	for _, p := range printers {
		if p.Nickname == nickname {
			return p, nil
		}
	}

	return PrinterRecord{}, fmt.Errorf("%w: %s", ErrNotFound, nickname)
}

// RemoveByNickname reescribe el archivo sin la impresora indicada.
func (r *Registry) RemoveByNickname(nickname string) error {
	nickname = strings.TrimSpace(nickname)

	r.mu.Lock()
	defer r.mu.Unlock()

	printers, cols, err := r.readAll()
	if err != nil {
		return err
	}

	kept := make([]PrinterRecord, 0, len(printers))
	for _, p := range printers {
		if p.Nickname != nickname {
			kept = append(kept, p)
		}
	}

	if len(kept) == len(printers) {
		return fmt.Errorf("%w: %s", ErrNotFound, nickname)
	}

	return r.rewrite(cols, kept)
}

// readAll retorna las filas y el encabezado tal como está en el archivo
// (nil si el archivo no existe o está vacío).
func (r *Registry) readAll() ([]PrinterRecord, []string, error) {
	file, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []PrinterRecord{}, nil, nil
		}

		return nil, nil, fmt.Errorf("open registry: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	cols, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []PrinterRecord{}, nil, nil
		}

		return nil, nil, fmt.Errorf("read registry header: %w", err)
	}

	index := make(map[string]int, len(cols))
	for i, c := range cols {
		column, ok := ColumnFor(c)
		if !ok {
			continue
		}

		if _, seen := index[column]; !seen {
			index[column] = i
		}
	}

	printers := []PrinterRecord{}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, nil, fmt.Errorf("read registry row: %w", err)
		}

		get := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(row) {
				return ""
			}

			return strings.TrimSpace(row[i])
		}

		printers = append(printers, PrinterRecord{
			MachineName: get("machine_name"),
			Nickname:    get("nickname"),
			IP:          get("ip"),
			Type:        get("type"),
			Brand:       get("brand"),
			API:         get("api"),
		})
	}

	return printers, cols, nil
}

// rewrite escribe a un temporal y lo renombra para no dejar un CSV a medias.
// Conserva el encabezado existente.
func (r *Registry) rewrite(cols []string, printers []PrinterRecord) error {
	if cols == nil {
		cols = header
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".printers-*.csv")
	if err != nil {
		return fmt.Errorf("create temp registry: %w", err)
	}

	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := csv.NewWriter(tmp)

	if err := w.Write(cols); err != nil {
		tmp.Close()
		return fmt.Errorf("write registry header: %w", err)
	}

	for _, p := range printers {
		if err := w.Write(p.rowFor(cols)); err != nil {
			tmp.Close()
			return fmt.Errorf("write registry row: %w", err)
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush registry: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp registry: %w", err)
	}

	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replace registry: %w", err)
	}

	return nil
}
