package main

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const defaultDumpDir = "./tmp"

// Dumper сохраняет собранный документ расписания и возвращает путь к
// итоговому файлу.
type Dumper interface {
	Dump(t *Timetable, name string) (string, error)
}

// FileDumper пишет документ JSON-файлом в каталог выгрузки. Пустое
// имя заменяется случайным.
type FileDumper struct {
	Dir string
}

func (d *FileDumper) dir() string {
	if d.Dir != "" {
		return d.Dir
	}
	return defaultDumpDir
}

func (d *FileDumper) Dump(t *Timetable, name string) (string, error) {
	if err := os.MkdirAll(d.dir(), 0o755); err != nil {
		return "", fmt.Errorf("каталог выгрузки: %w", err)
	}
	if name == "" {
		name = uuid.NewString()
	}

	data, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("сериализация расписания: %w", err)
	}

	path := filepath.Join(d.dir(), name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("запись %s: %w", path, err)
	}
	return path, nil
}

// ZIPDumper пишет JSON как FileDumper и следом упаковывает весь
// каталог выгрузки в архив рядом с ним.
type ZIPDumper struct {
	FileDumper
}

func (d *ZIPDumper) Dump(t *Timetable, name string) (string, error) {
	jsonPath, err := d.FileDumper.Dump(t, name)
	if err != nil {
		return "", err
	}

	base := strings.TrimSuffix(filepath.Base(jsonPath), ".json")
	zipPath := filepath.Join(d.dir(), base+".zip")
	if err := zipDirectory(d.dir(), zipPath); err != nil {
		return "", err
	}
	return zipPath, nil
}

// zipDirectory упаковывает файлы каталога (без вложенных архивов,
// иначе архив попал бы сам в себя) в dest.
func zipDirectory(dir, dest string) error {
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("создание архива: %w", err)
	}

	zw := zip.NewWriter(out)
	walkErr := filepath.WalkDir(dir, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || strings.HasSuffix(p, ".zip") {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})
	if walkErr != nil {
		zw.Close()
		out.Close()
		return fmt.Errorf("упаковка каталога %s: %w", dir, walkErr)
	}
	if err := zw.Close(); err != nil {
		out.Close()
		return fmt.Errorf("закрытие архива: %w", err)
	}
	return out.Close()
}
