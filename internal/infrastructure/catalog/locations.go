// Package catalog lee el catálogo de sucursales y bodegas publicado en XML
// (UTF-8 o ISO-8859-1) y genera el SQL para poblar las tablas branches y warehouses.
//
// Formato esperado:
//
//	<ubicaciones>
//	  <ubicacion tipo="branch" id="centro" nombre="Centro" direccion="Calle 10 # 5-20"/>
//	  <ubicacion tipo="warehouse" id="principal" nombre="Bodega Principal"/>
//	</ubicaciones>
package catalog

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/pos-backoffice/internal/domain/entity"
)

type document struct {
	Items []item `xml:"ubicacion"`
}

type item struct {
	Tipo      string `xml:"tipo,attr"`
	ID        string `xml:"id,attr"`
	Nombre    string `xml:"nombre,attr"`
	Direccion string `xml:"direccion,attr"`
}

// Load abre path y lo decodifica con Read.
func Load(path string) ([]entity.LocationDetail, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("abrir catálogo: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read decodifica el catálogo. Devuelve las ubicaciones ordenadas por tipo e id;
// un tipo desconocido o un (tipo, id) repetido es error.
func Read(r io.Reader) ([]entity.LocationDetail, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		if strings.EqualFold(charset, "ISO-8859-1") || strings.EqualFold(charset, "ISO8859-1") {
			return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
		}
		return input, nil
	}
	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decodificar catálogo: %w", err)
	}

	out := make([]entity.LocationDetail, 0, len(doc.Items))
	seen := make(map[string]struct{}, len(doc.Items))
	for i, it := range doc.Items {
		loc, err := entity.ParseLocation(it.Tipo, it.ID)
		if err != nil {
			return nil, fmt.Errorf("ubicación %d: %w", i+1, err)
		}
		k := entity.LocationKey(loc)
		if _, dup := seen[k]; dup {
			return nil, fmt.Errorf("ubicación %d: %s repetida", i+1, k)
		}
		seen[k] = struct{}{}
		name := clean(it.Nombre)
		if name == "" {
			name = loc.Ref()
		}
		out = append(out, entity.LocationDetail{Location: loc, Name: name, Address: clean(it.Direccion)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return entity.LocationKey(out[i].Location) < entity.LocationKey(out[j].Location)
	})
	return out, nil
}

// WriteSeedSQL escribe los INSERT idempotentes (ON CONFLICT) para las tablas de ubicaciones.
func WriteSeedSQL(w io.Writer, locs []entity.LocationDetail) error {
	var branches, warehouses []entity.LocationDetail
	for _, l := range locs {
		switch l.Location.(type) {
		case entity.Branch:
			branches = append(branches, l)
		case entity.Warehouse:
			warehouses = append(warehouses, l)
		}
	}

	var b strings.Builder
	b.WriteString("-- Sucursales y bodegas\n")
	b.WriteString("-- Generado desde el catálogo de ubicaciones\n\n")
	writeInsert(&b, "branches", branches)
	writeInsert(&b, "warehouses", warehouses)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeInsert(b *strings.Builder, table string, locs []entity.LocationDetail) {
	if len(locs) == 0 {
		return
	}
	fmt.Fprintf(b, "INSERT INTO %s (id, name, address) VALUES\n", table)
	for i, l := range locs {
		sep := ","
		if i == len(locs)-1 {
			sep = ""
		}
		fmt.Fprintf(b, "  ('%s', '%s', '%s')%s\n", escapeSQL(l.Location.Ref()), escapeSQL(l.Name), escapeSQL(l.Address), sep)
	}
	b.WriteString("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, address = EXCLUDED.address;\n\n")
}

func clean(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
