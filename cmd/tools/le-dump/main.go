// le-dump печатает снимки пулов, сохранённые клиентом при рассинхронизации.
//
//	le-dump -data ./data                      список снимков
//	le-dump -data ./data -key snapshot:s1:... таблица сущностей снимка
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/annel0/battlescape/internal/entity"
	"github.com/annel0/battlescape/internal/storage"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	dataPath := flag.String("data", os.Getenv("BATTLESCAPE_DATA_DIR"), "каталог данных клиента")
	session := flag.String("session", "", "фильтр по сессии")
	key := flag.String("key", "", "ключ снимка")
	all := flag.Bool("all", false, "показывать свободные слоты")
	flag.Parse()

	if *dataPath == "" {
		log.Fatal("не задан каталог данных (-data или BATTLESCAPE_DATA_DIR)")
	}
	store, err := storage.Open(*dataPath)
	if err != nil {
		log.Fatalf("открытие хранилища: %v", err)
	}
	defer store.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	if *key == "" {
		list, err := store.List(*session)
		if err != nil {
			log.Fatalf("список снимков: %v", err)
		}
		fmt.Fprintln(w, "KEY\tSESSION\tFRAME\tSIZE")
		for _, info := range list {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", info.Key, info.Session, info.Frame, info.Size)
		}
		return
	}

	snap, err := store.Load(*key)
	if err != nil {
		log.Fatalf("снимок %s: %v", *key, err)
	}
	printSnapshot(w, snap, *all)
}

func printSnapshot(w *tabwriter.Writer, snap entity.Snapshot, all bool) {
	fmt.Fprintf(w, "session %s\tframe %d\ttime %d\tlevel %d\n", snap.Session, snap.Frame, snap.Time, snap.WorldLevel)
	if snap.Error != "" {
		fmt.Fprintf(w, "error\t%s\n", snap.Error)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "SLOT\tNUM\tTYPE\tINUSE\tINVIS\tTEAM\tHP\tSTATE\tTHINK\tPOS\tPATH\tMODEL")
	for _, r := range snap.Entities {
		if !r.InUse && !all {
			continue
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%t\t%t\t%d\t%d\t%#x\t%s\t%s\t%d/%d\t%s\n",
			r.Slot, r.Num, r.Type, r.InUse, r.Invisible, r.Team, r.HP, r.State,
			r.Think, r.Pos, r.PathPos, r.PathLength, r.Model)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "LM\tNUM\tNAME\tFRAME\tLEVEL")
	for _, m := range snap.Models {
		fmt.Fprintf(w, "%d\t%d\t%s\t%d\t%#x\n", m.Slot, m.Num, m.Name, m.Frame, m.LevelFlags)
	}

	st := snap.Stats
	fmt.Fprintf(w, "\nticks %d\tthinks %d\ttraces %d\tin use %d/%d\n", st.Ticks, st.Thinks, st.Traces, st.EntitiesInUse, st.EntitiesCap)
}
