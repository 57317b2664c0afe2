package host

import (
	"bufio"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const unknown = "unknown"

var (
	cpuModelRe = regexp.MustCompile(`^model name[\t ]+: +(.+)$`)
	memTotalRe = regexp.MustCompile(`^MemTotal: +([0-9]+) +kB$`)
	dfLineRe   = regexp.MustCompile(`^(/[^ ]+) +([0-9]+) +[0-9]+ +[0-9]+ +[0-9]+% +[^ ]+$`)
)

// cpu reports "<count> x <model>" from /proc/cpuinfo
func (p *Provider) cpu() string {
	count, model := 0, unknown
	p.scanLines("/proc/cpuinfo", func(line string) bool {
		if m := cpuModelRe.FindStringSubmatch(line); m != nil {
			count++
			model = m[1]
		}
		return true
	})
	return fmt.Sprintf("%d x %s", count, model)
}

// ram reports MemTotal from /proc/meminfo in MB
func (p *Provider) ram() string {
	size := unknown
	p.scanLines("/proc/meminfo", func(line string) bool {
		m := memTotalRe.FindStringSubmatch(line)
		if m == nil {
			return true
		}
		if kb, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			size = strconv.FormatInt(kb/1024, 10)
		}
		return false
	})
	return size + " MB"
}

// disk sums the capacity of local non-tmpfs filesystems reported by df
func (p *Provider) disk(ctx context.Context) string {
	out, err := p.Runner.Output(ctx, "df", "-k", "-P", "--local", "--exclude-type=tmpfs")
	if err != nil {
		p.debug("df failed", zap.Error(err))
	}
	return parseDiskSize(string(out))
}

func parseDiskSize(dfOutput string) string {
	var gb float64
	for _, line := range strings.Split(dfOutput, "\n") {
		m := dfLineRe.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		kb, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		gb += kb / 1024 / 1024
	}
	if gb == 0 {
		return unknown
	}
	return fmt.Sprintf("%.1f GB", gb)
}

func (p *Provider) scanLines(path string, fn func(line string) bool) {
	f, err := p.FS.Open(path)
	if err != nil {
		p.debug("cannot read host file", zap.String("path", path), zap.Error(err))
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if !fn(scanner.Text()) {
			return
		}
	}
}
