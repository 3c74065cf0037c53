package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/shelfdb/shelfdb"
)

// main inspects an existing database: lists its collections and reports
// their storage footprint, or takes a collection backup.
//
//	go run main.go -path /var/lib/app/db
//	go run main.go -path /var/lib/app/db -backup rooms -out rooms.sst
func main() {
	path := flag.String("path", "", "database directory")
	backup := flag.String("backup", "", "collection to back up")
	out := flag.String("out", "", "backup output file")
	flag.Parse()

	if *path == "" {
		log.Fatal("database path is required")
	}

	s, err := shelfdb.OpenWithExistingCFs(*path, nil)
	if err != nil {
		log.Fatalf("open %s: %v", *path, err)
	}
	defer s.Close()

	if *backup != "" {
		if *out == "" {
			log.Fatal("backup output file is required")
		}
		if err := s.CreateBackup(*backup, *out); err != nil {
			log.Fatalf("backup %s: %v", *backup, err)
		}
		fmt.Printf("collection %q backed up to %s\n", *backup, *out)
		return
	}

	for _, cf := range s.CFs() {
		size, err := s.Size(cf)
		if err != nil {
			log.Fatalf("size of %s: %v", cf, err)
		}
		fmt.Fprintf(os.Stdout, "%-24s %10.2f MB (sst %d B, memtable %d B)\n",
			cf, size.TotalMB(), size.SSTBytes, size.MemTableBytes)
	}
}
