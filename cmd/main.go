package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/logrusorgru/aurora"
	log "github.com/sirupsen/logrus"

	"github.com/agheieff/RegionAI-sub002/analyzer"
	"github.com/agheieff/RegionAI-sub002/lang"
)

func main() {
	debug := flag.Bool("debug", false, "Prints debug messages.")
	help := flag.Bool("help", false, "Show all command-line options.")
	flag.Parse()
	if *help {
		flag.PrintDefaults()
		return
	}
	if *debug {
		log.SetLevel(log.DebugLevel)
	}
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})

	if flag.NArg() < 1 {
		log.Fatalln("usage: analyze [-debug] program.json")
	}
	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("ERROR opening program: %s", err)
	}
	defer f.Close()

	prog, err := lang.DecodeProgram(f)
	if err != nil {
		log.Fatalf("ERROR decoding program: %s", err)
	}

	ac, err := analyzer.NewAnalysisContext(prog, analyzer.Config{})
	if err != nil {
		log.Fatalf("ERROR: %s", err)
	}
	res := ac.Run()

	names := make([]string, 0, len(res.Summaries))
	for name := range res.Summaries {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := res.Summaries[name]
		fp := res.Fingerprints[topKey(ac, name)]
		fmt.Println(aurora.BgBrightGreen(name), s)
		if len(fp) > 0 {
			fmt.Println("  tags:", aurora.Magenta(fp.String()))
		}
		for _, post := range s.Postconditions {
			fmt.Println("  post:", post)
		}
	}
	for _, w := range res.Warnings {
		fmt.Println(aurora.Yellow(fmt.Sprint("WARNING ", w.Fn, ": ", w.Msg)))
	}
	for _, e := range res.Errors {
		fmt.Println(aurora.Red(fmt.Sprint("ERROR ", e.Error())))
	}
	fmt.Println("termination:", res.Termination)
}

func topKey(ac *analyzer.AnalysisContext, fn string) string {
	return analyzer.TopContext(fn, ac.NumParams(fn)).Key()
}
