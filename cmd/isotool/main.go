// isotool inspects and renders isometric Tiled maps without opening a window.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(args)
	case "render":
		err = cmdRender(args)
	case "pick":
		err = cmdPick(args)
	case "tile":
		err = cmdTile(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`isotool - isometric map utility

Usage:
  isotool <command> [options] <map>

Commands:
  info <map>                  Show map size, layers, tilesets and objects
  render [options] <map>      Render a view of the map to PNG
  pick [options] <map> <sx> <sy>
                              Show the tile under a screen point
  tile <map> <x> <y>          Show the layers and objects on a tile

Common options:
  -config <file>              Config file (asset dirs, logging, view)
  -w, -h <px>                 Screen size (default from config)
  -x, -y <tile>               Tile to centre the view on (default map centre)

Examples:
  isotool info maps/town.tmj
  isotool render -o town.png -scale 2 maps/town.tmj
  isotool pick -x 10 -y 10 maps/town.tmj 512 384
  isotool tile maps/town.tmj 3 4`)
}
