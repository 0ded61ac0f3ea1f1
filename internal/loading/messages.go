package loading

import "strings"

// messages are shown while a snapshot is loading.
var messages = upper([]string{
	"Reticulating Splines...",
	"Charging Flux Capacitor...",
	"Warming Up The 56K Modem...",
	"Connecting To AOL... Stay Off The Phone!",
	"Polishing 'Under Construction' GIFs...",
	"Asking Jeeves For Directions...",
	"Rewriting Internet History...",
	"Calibrating The DeLorean...",
	"Downloading More RAM...",
	"Searching For The Dancing Baby...",
	"Realigning Space-Time Continuum...",
	"Buffers: 0% ... 15% ... 42%...",
	"Feeding The Web Crawlers...",
	"Booting Netscape Navigator...",
	"Optimizing For 800X600 Resolution...",
	"Syncing With The Digital Past...",
	"Consulting The Oracle Of Geocities...",
	"Locating The 'Skip Intro' Button...",
	"Defragmenting The Hard Drive...",
	"Initiating Chrono-Navigation Sequence...",
	"Scanning Temporal Anomalies...",
	"Adjusting Paradox Stabilizers...",
	"Preparing For Quantum Leap...",
	"Spooling Up Historical Data Stream...",
	"Engaging Temporal Distortion Field...",
	"Warping Through Web Eras...",
	"Manifesting Digital Echoes...",
	"Calculating Anachronism Quotient...",
	"Loading Pixels From The Past...",
	"Bypassing Y2K Protocol...",
	"Decompressing Ancient Websites...",
	"Projecting Into The Hyper-Past...",
	"Retrieving Archived Realities...",
	"Unearthing Digital Artifacts...",
	"Navigating The Ether-Waves Of Yesteryear...",
	"Establishing Temporal Bridge...",
	"Decrypting Historical Packets...",
	"Reconstructing Lost Web Pages...",
	"Time-Traveling Data Transfer In Progress...",
	"Hold On Tight, It's A Bumpy Ride!...",
	"Fast-Forwarding To The Past...",
	"Rewinding To Web 1.0...",
	"Loading The Echoes Of Geocities...",
	"Preparing For Dial-Up Speeds...",
	"Unlocking The Digital Vault...",
	"Channeling The Ancients (Of The Internet)...",
	"Re-rendering Yesterday's Tomorrow...",
	"Synchronizing With Vintage Servers...",
	"Accessing The Chrono-Web Archive...",
	"Almost There... Just A Few Millennia To Go...",
})

func upper(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToUpper(s)
	}
	return out
}

// Messages returns a copy of the loading messages.
func Messages() []string {
	return append([]string(nil), messages...)
}
