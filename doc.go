/*
Package lutmap maps an already-optimized combinational netlist onto
6-input, dual-output lookup tables.

It takes a DAG of single-output primitive gates (AND/OR/XOR/NAND/NOR/
XNOR/NOT/ANDNOT/ORNOT/MUX) terminating at primary inputs, register
outputs and constants, and replaces every mapped gate with either a
single-output LUT6 or a dual-output LUT6D. The netlist itself, and the
outer driver that decides when to invoke the mapper, are owned by the
caller; this package only implements the mapping pass described by the
Module/Cell/Wire contract in netlist.go.

*/
package lutmap
