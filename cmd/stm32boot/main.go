// Command stm32boot drives the STM32 UART ROM bootloader to read,
// erase, write, protect and trace flash memory over a serial port. Its
// argv is an ordered list of actions executed left to right; see
// `stm32boot --help` for the full option table.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/rksdna/stm32boot/internal/cli"
	"github.com/rksdna/stm32boot/internal/options"
)

const version = 1

func main() {
	os.Exit(run())
}

func run() int {
	cli.Banner(cli.NoTTY())

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)

	out := bufio.NewWriterSize(os.Stdout, 256)
	defer out.Flush()

	session := cli.NewSession(out, log)

	fmt.Fprintf(out, "stm32boot, version 0.%d\n", version)

	code := options.Run(out, cli.Synopsis(), cli.Table(session), os.Args[1:])
	out.Flush()
	return int(code)
}
