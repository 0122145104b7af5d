package system

import (
	"fmt"
	"log"
	"os/exec"
	"strings"
	"syscall"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// InitResourceLimits raises the open-file limit so long capture sessions
// with piped encoder processes do not run out of descriptors.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] could not read file limit: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] could not raise file limit: %v", err)
	}
}

// BestEncoder picks the WebM video encoder to use, preferring VP9 over VP8.
// There is no fallback beyond this list: if ffmpeg or both encoders are
// missing the capture session must fail rather than switch containers.
func BestEncoder() (string, error) {
	cmd := exec.Command("ffmpeg", "-hide_banner", "-encoders")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffmpeg probe failed: %w", err)
	}

	for _, enc := range []string{"libvpx-vp9", "libvpx"} {
		if strings.Contains(string(out), enc) {
			return enc, nil
		}
	}

	return "", fmt.Errorf("no WebM encoder available")
}

// CheckEncoderSupport reports whether a specific encoder name is available.
func CheckEncoderSupport(name string) bool {
	cmd := exec.Command("ffmpeg", "-hide_banner", "-encoders")
	out, err := cmd.CombinedOutput()
	return err == nil && strings.Contains(string(out), name)
}

// EncoderThreads returns the thread count to hand to the encoder process.
func EncoderThreads() int {
	count, err := cpu.Counts(true)
	if err != nil || count < 1 {
		return 1
	}
	if count > 8 {
		count = 8
	}
	return count
}

// FragmentBudget returns the byte budget for accumulated encoded fragments,
// derived from available memory. A 60-second VP9 reel is a few megabytes,
// so the budget only ever matters on severely constrained hosts.
func FragmentBudget() int64 {
	const maxBudget = 256 << 20

	vm, err := mem.VirtualMemory()
	if err != nil {
		return maxBudget
	}

	budget := int64(vm.Available / 4)
	if budget > maxBudget {
		budget = maxBudget
	}
	return budget
}
