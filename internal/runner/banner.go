package runner

import (
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/interceptor/pkg/version"
)

const banner = `
   _       __                            __
  (_)___  / /____  ______________  ____ / /_____  _____
 / / __ \/ __/ _ \/ ___/ ___/ _ \/ __ \/ __/ __ \/ ___/
/ / / / / /_/  __/ /  / /__/  __/ /_/ / /_/ /_/ / /
/_/_/ /_/\__/\___/_/   \___/\___/ .___/\__/\____/_/
                              /_/
`

func showBanner() {
	gologger.Print().Msgf("%s\n", banner)
	gologger.Print().Msgf("\t\tinterceptor %s\n\n", version.GetVersion())
}
