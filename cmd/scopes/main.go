// Command scopes draws the darkroom scopes (histogram, waveforms, parades
// and vectorscope) of image files.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
