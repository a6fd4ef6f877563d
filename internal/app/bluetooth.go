package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/envlink/internal/bluetooth"
	"github.com/blackwell-systems/envlink/internal/output"
)

var (
	bluetoothMethod string

	bluetoothCmd = &cobra.Command{
		Use:   "bluetooth",
		Short: "macOS Bluetooth helpers",
	}

	bluetoothRestartCmd = &cobra.Command{
		Use:   "restart",
		Short: "Power-cycle Bluetooth to recover stuck devices",
		Long: `Turns Bluetooth off and back on.

Methods:
  blueutil  toggle controller power with blueutil (default)
  kext      unload and reload the Bluetooth kernel extension (sudo prompts for a password)`,
		Example: `  envlink bluetooth restart
  envlink bluetooth restart --method kext`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			method := s.cfg.Bluetooth.Method
			if cmd.Flags().Changed("method") {
				method = bluetoothMethod
			}
			return runBluetoothRestart(cmd.Context(), s, method)
		},
	}
)

func init() {
	bluetoothRestartCmd.Flags().StringVar(&bluetoothMethod, "method", "", "restart method: blueutil or kext (default from config)")

	bluetoothCmd.AddCommand(bluetoothRestartCmd)
	RootCmd.AddCommand(bluetoothCmd)
}

func runBluetoothRestart(ctx context.Context, s *session, methodName string) error {
	method, err := bluetooth.ParseMethod(methodName)
	if err != nil {
		return err
	}

	spinner := output.NewSpinner(fmt.Sprintf("Restarting bluetooth (%s)", method))
	spinner.SetWriter(s.progressWriter())
	if method != bluetooth.MethodKext {
		// sudo needs the terminal to itself
		spinner.Start()
	}

	err = bluetooth.NewRestarter(s.run, s.cfg.Bluetooth).Restart(ctx, method)
	spinner.Stop()
	if err != nil {
		return err
	}

	fmt.Fprint(s.out, output.CheckLine(output.StatusOK, "bluetooth restarted", string(method)))
	return nil
}
