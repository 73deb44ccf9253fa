package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
	"github.com/spf13/cobra"
)

// releaseRepository is the GitHub owner/repo that publishes release binaries.
const releaseRepository = "clinicpulse/clinicpulse"

var (
	selfUpgradeRequested bool
	selfUpgradeCheckOnly bool
	selfUpgradeAutoYes   bool
)

func setupSelfUpgrade() {
	RootCmd.PersistentFlags().BoolVar(&selfUpgradeRequested, "self-upgrade", false, "Upgrade ClinicPulse to the latest release and exit")
	RootCmd.PersistentFlags().BoolVar(&selfUpgradeCheckOnly, "self-upgrade-check", false, "Only check whether a newer ClinicPulse release is available")
	RootCmd.PersistentFlags().BoolVar(&selfUpgradeAutoYes, "self-upgrade-yes", false, "Skip confirmation prompts when running --self-upgrade")

	existingPreRun := RootCmd.PersistentPreRunE
	RootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if existingPreRun != nil {
			if err := existingPreRun(cmd, args); err != nil {
				return err
			}
		}

		return handleSelfUpgradeFlags()
	}
}

func handleSelfUpgradeFlags() error {
	if !selfUpgradeRequested && !selfUpgradeCheckOnly {
		return nil
	}

	if err := runSelfUpgrade(selfUpgradeCheckOnly, selfUpgradeAutoYes); err != nil {
		return err
	}

	os.Exit(0)
	return nil
}

// currentVersion parses the build version; dev builds have none.
func currentVersion(version string) (semver.Version, error) {
	versionStr := strings.TrimSpace(strings.TrimPrefix(version, "v"))
	if versionStr == "" || versionStr == "dev" {
		return semver.Version{}, errors.New("self-upgrade is only available for release builds")
	}

	current, err := semver.Parse(versionStr)
	if err != nil {
		return semver.Version{}, fmt.Errorf("invalid current version %q: %w", version, err)
	}
	return current, nil
}

func runSelfUpgrade(checkOnly, autoYes bool) error {
	current, err := currentVersion(Version)
	if err != nil {
		return err
	}

	fmt.Printf("Checking current version... v%s\n", current)

	fmt.Print("Checking latest released version... ")
	latest, found, err := selfupdate.DetectLatest(releaseRepository)
	if err != nil {
		fmt.Println()
		return fmt.Errorf("failed to check for updates: %w", err)
	}

	if !found {
		fmt.Println()
		return errors.New("no releases found for ClinicPulse")
	}

	latestVer := latest.Version
	fmt.Printf("v%s\n", latestVer)

	if !latestVer.GT(current) {
		fmt.Println("ClinicPulse is already up to date")
		return nil
	}

	fmt.Printf("New release found! v%s --> v%s\n", current, latestVer)
	if checkOnly {
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to determine executable path: %w", err)
	}

	fmt.Println()
	fmt.Println("ClinicPulse release status:")
	fmt.Printf("  * Current exe: %q\n", exe)
	fmt.Printf("  * Target OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if latest.AssetURL != "" {
		fmt.Printf("  * Download URL: %s\n", latest.AssetURL)
	}
	fmt.Println()

	if !autoYes {
		fmt.Println("The new release will download and replace the current binary.")
		fmt.Print("Do you want to continue? [Y/n] ")

		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		response = strings.ToLower(strings.TrimSpace(response))
		if response != "" && response != "y" && response != "yes" {
			fmt.Println("Update cancelled.")
			return nil
		}
	}

	fmt.Println("Downloading release...")
	if err := selfupdate.UpdateTo(latest.AssetURL, exe); err != nil {
		return fmt.Errorf("self-upgrade failed: %w", err)
	}

	fmt.Printf("Updated ClinicPulse to v%s\n", latestVer)
	return nil
}
