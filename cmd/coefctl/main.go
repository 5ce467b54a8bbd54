package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"image"
	"log"
	"os"
	"runtime"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/image/tiff"
	"lukechampine.com/flagg"

	"github.com/leijurv/jpeg_coef_go/coef"
	"github.com/leijurv/jpeg_coef_go/rawstream"
)

func main() {
	log.SetFlags(0)

	flagg.Root.Usage = flagg.SimpleUsage(flagg.Root, `Usage: coefctl [command] [args]

Commands:
    coefctl synth [flags] out.rcf
    coefctl decode [flags] in.rcf [out.tiff]
    coefctl verify [flags] FILE...
`)
	cmdSynth := flagg.New("synth", `Usage:
    coefctl synth [flags] out.rcf
      Write a synthetic coefficient stream to out.rcf
`)
	width := cmdSynth.Int("w", 64, "image width")
	height := cmdSynth.Int("h", 48, "image height")
	comps := cmdSynth.Int("c", 3, "number of components (1-4, 3 or more uses 4:2:0)")
	progressive := cmdSynth.Bool("p", true, "write a progressive scan script")
	spectral := cmdSynth.Bool("spectral", false, "with -p, split the spectrum only")
	seed := cmdSynth.Uint64("seed", 1, "coefficient seed")
	quant := cmdSynth.Uint("q", 2, "base quantizer")

	cmdDecode := flagg.New("decode", `Usage:
    coefctl decode [flags] in.rcf [out.tiff]
      Decode in.rcf, print its digest and optionally write one component as TIFF
`)
	chunk := cmdDecode.Int("chunk", 4096, "bytes fed per step (0 = all at once)")
	buffered := cmdDecode.Bool("buffered", false, "run one output pass per scan")
	smooth := cmdDecode.Bool("smooth", true, "interblock smoothing for progressive streams")
	resident := cmdDecode.Int("paged", 0, "keep only this many block rows resident per component (0 = all)")
	component := cmdDecode.Int("component", 0, "component written to the TIFF")
	verbose := cmdDecode.Bool("v", false, "log controller warnings and passes")

	cmdVerify := flagg.New("verify", `Usage:
    coefctl verify [flags] FILE...
      Decode every FILE whole and in several chunk sizes and compare the results
`)
	workers := cmdVerify.Int("workers", runtime.NumCPU(), "number of parallel workers")
	verifyVerbose := cmdVerify.Bool("v", false, "print every file")

	cmd := flagg.Parse(flagg.Tree{
		Cmd: flagg.Root,
		Sub: []flagg.Tree{
			{Cmd: cmdSynth},
			{Cmd: cmdDecode},
			{Cmd: cmdVerify},
		},
	})

	switch cmd {
	case cmdSynth:
		if cmd.NArg() != 1 {
			cmdSynth.Usage()
			return
		}
		f, err := rawstream.SynthFrame(*width, *height, *comps, *progressive, uint16(*quant))
		if err != nil {
			log.Fatalln("invalid frame:", err)
		}
		script := rawstream.BaselineScript(f)
		if *progressive {
			script = rawstream.ProgressiveScript(f)
			if *spectral {
				script = rawstream.SpectralScript(f)
			}
		}
		var buf bytes.Buffer
		if err := rawstream.Encode(&buf, f, rawstream.Synthesize(f, *seed), script); err != nil {
			log.Fatalln("could not encode:", err)
		}
		if err := os.WriteFile(cmd.Arg(0), buf.Bytes(), 0o644); err != nil {
			log.Fatalln("could not write output file:", err)
		}
		fmt.Printf("wrote %s: %dx%d, %d components, %d scans, %d bytes\n",
			cmd.Arg(0), f.Width, f.Height, len(f.Components), len(script), buf.Len())

	case cmdDecode:
		if cmd.NArg() < 1 || cmd.NArg() > 2 {
			cmdDecode.Usage()
			return
		}
		data, err := os.ReadFile(cmd.Arg(0))
		if err != nil {
			log.Fatalln("could not read input:", err)
		}
		opts := &rawstream.DecodeOptions{
			Chunk:            *chunk,
			BufferedImage:    *buffered,
			DoBlockSmoothing: *smooth,
		}
		if *verbose {
			opts.Logger = log.New(os.Stderr, "", 0)
		}
		var paged *coef.PagedAllocator
		if *resident > 0 {
			paged = &coef.PagedAllocator{ResidentRows: *resident}
			defer paged.Close()
			opts.Allocator = paged
		}
		img, err := rawstream.DecodeAll(data, opts)
		if err != nil {
			log.Fatalln("could not decode:", err)
		}
		fmt.Printf("%s: %dx%d, %d passes, blake2b-256 %s\n",
			cmd.Arg(0), img.Width, img.Height, img.Passes, digest(img))
		if paged != nil {
			st := paged.Stats()
			fmt.Printf("paged store: %d rows spilled (%d bytes), %d rows loaded\n",
				st.SpilledRows, st.SpilledBytes, st.LoadedRows)
		}
		if cmd.NArg() == 2 {
			if err := writeTIFF(cmd.Arg(1), img, *component); err != nil {
				log.Fatalln("could not write tiff:", err)
			}
		}

	case cmdVerify:
		if cmd.NArg() == 0 {
			cmdVerify.Usage()
			return
		}
		if !verifyFiles(cmd.Args(), *workers, *verifyVerbose) {
			os.Exit(1)
		}
	}
}

// digest hashes every plane of img
func digest(img *rawstream.Image) string {
	h, _ := blake2b.New256(nil)
	for _, p := range img.Planes {
		h.Write(p.Pix)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeTIFF(path string, img *rawstream.Image, component int) error {
	if component < 0 || component >= len(img.Planes) {
		return fmt.Errorf("component %d out of range (image has %d)", component, len(img.Planes))
	}
	p := &img.Planes[component]
	gray := &image.Gray{
		Pix:    p.Pix,
		Stride: p.Width,
		Rect:   image.Rect(0, 0, p.Width, p.Height),
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := tiff.Encode(f, gray, &tiff.Options{Compression: tiff.Deflate}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
