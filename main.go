package main

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/nwillard/lhafs/internal/lha"
)

func dumpFS(fsys fs.FS) {
	const tfmt = "2006-01-02T15:04:05"
	fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			fmt.Printf("%#v: %v\n", path, err)
			return nil
		}

		i, err := d.Info()
		if err != nil {
			fmt.Printf("%#v: %v\n", path, err)
			return nil
		}

		fmt.Printf("%#v\n", path)
		fmt.Printf("    isdir=%v size=%d mode=%v modtime=%s\n",
			d.IsDir(), i.Size(), i.Mode(), i.ModTime().Format(tfmt))

		return nil
	})
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: lhafs <archive.lzh>")
		os.Exit(1)
	}

	disk, err := os.Open(os.Args[1])
	if err != nil {
		slog.Error("opening archive", "err", err)
		os.Exit(1)
	}
	defer disk.Close()

	fsys, err := lha.New(disk)
	if err != nil {
		slog.Error("reading archive", "err", err)
		os.Exit(1)
	}

	dumpFS(fsys)
}
