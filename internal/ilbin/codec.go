package ilbin

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"ilpatch/internal/il"
)

// Encode writes m to w in the versioned wire form. Instruction offsets are
// normalized (recomputed) before flattening so that recorded debug offsets
// and stream offsets agree.
func Encode(w io.Writer, m *il.Module) error {
	fm := fileModule{Schema: SchemaVersion, Name: m.Name}
	for _, t := range m.Types {
		ft := fileType{
			Name:  string(t.Name),
			Flags: uint8(t.Flags),
			Base:  string(t.Base),
			Attrs: flattenAttrs(t.Attrs),
		}
		for _, md := range t.Methods {
			fmd := fileMethod{
				Name:   md.Name,
				Return: string(md.Sig.Return.Name),
				Flags:  uint8(md.Flags),
				Attrs:  flattenAttrs(md.Attrs),
			}
			for _, p := range md.Sig.Params {
				fmd.Params = append(fmd.Params, string(p.Name))
			}
			if md.Body != nil {
				if err := md.Body.ComputeOffsets(); err != nil {
					return fmt.Errorf("%s::%s: %w", t.Name, md.Name, err)
				}
				fb, err := flattenBody(md.Body)
				if err != nil {
					return fmt.Errorf("%s::%s: %w", t.Name, md.Name, err)
				}
				fmd.HasBody = true
				fmd.Body = fb
			}
			ft.Methods = append(ft.Methods, fmd)
		}
		for _, f := range t.Fields {
			ft.Fields = append(ft.Fields, fileField{
				Name: f.Name, Type: string(f.Type.Name), Flags: uint8(f.Flags),
				Attrs: flattenAttrs(f.Attrs),
			})
		}
		for _, p := range t.Props {
			ft.Props = append(ft.Props, fileProp{
				Name: p.Name, Type: string(p.Type.Name), Flags: uint8(p.Flags),
				Attrs: flattenAttrs(p.Attrs),
			})
		}
		fm.Types = append(fm.Types, ft)
	}
	return msgpack.NewEncoder(w).Encode(&fm)
}

// Decode reads one module from r, rebuilding instruction references and
// owner backlinks.
func Decode(r io.Reader) (*il.Module, error) {
	var fm fileModule
	if err := msgpack.NewDecoder(r).Decode(&fm); err != nil {
		return nil, err
	}
	if fm.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSchema, fm.Schema, SchemaVersion)
	}
	m := &il.Module{Name: fm.Name}
	for _, ft := range fm.Types {
		t := &il.TypeDecl{
			Name:  il.QName(ft.Name),
			Flags: il.TypeFlags(ft.Flags),
			Base:  il.QName(ft.Base),
			Attrs: liftAttrs(ft.Attrs),
		}
		for _, fmd := range ft.Methods {
			md := &il.MethodDecl{
				Owner: t,
				Name:  fmd.Name,
				Sig:   sigOf(fmd),
				Flags: il.MemberFlags(fmd.Flags),
				Attrs: liftAttrs(fmd.Attrs),
			}
			if fmd.HasBody {
				b, err := liftBody(fmd.Body)
				if err != nil {
					return nil, fmt.Errorf("%s::%s: %w", ft.Name, fmd.Name, err)
				}
				md.Body = b
			}
			t.Methods = append(t.Methods, md)
		}
		for _, ff := range ft.Fields {
			t.Fields = append(t.Fields, &il.FieldDecl{
				Owner: t, Name: ff.Name,
				Type:  il.TypeRef{Name: il.QName(ff.Type)},
				Flags: il.MemberFlags(ff.Flags),
				Attrs: liftAttrs(ff.Attrs),
			})
		}
		for _, fp := range ft.Props {
			t.Props = append(t.Props, &il.PropertyDecl{
				Owner: t, Name: fp.Name,
				Type:  il.TypeRef{Name: il.QName(fp.Type)},
				Flags: il.MemberFlags(fp.Flags),
				Attrs: liftAttrs(fp.Attrs),
			})
		}
		m.Types = append(m.Types, t)
	}
	return m, nil
}

// ReadFile loads a module from path.
func ReadFile(path string) (*il.Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// WriteFile stores a module at path atomically (temp file + rename).
func WriteFile(path string, m *il.Module) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*.ilm")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := Encode(f, m); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
