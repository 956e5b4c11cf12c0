package cake

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// 实例文件格式：
//
//	<rows> <cols>
//	v11\tv12\t...\tv1n
//	...
//
// 每一行对应一个原子，每一列对应一个参与者

// ReadMatrix 从实例文件中读取估值矩阵
func ReadMatrix(r io.Reader) ([][]float64, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	// 读取表头
	header, err := nextLine(scanner)
	if err != nil {
		return nil, err
	}
	if header == "" {
		return nil, fmt.Errorf("%w: 缺少表头", ErrInvalidInstance)
	}

	fields := strings.Fields(header)
	if len(fields) != 2 {
		return nil, fmt.Errorf("%w: 表头格式应为 \"<rows> <cols>\"（得到 %q）", ErrInvalidInstance, header)
	}
	rows, err := strconv.Atoi(fields[0])
	if err != nil || rows <= 0 {
		return nil, fmt.Errorf("%w: 行数 %q 无效", ErrInvalidInstance, fields[0])
	}
	cols, err := strconv.Atoi(fields[1])
	if err != nil || cols <= 0 {
		return nil, fmt.Errorf("%w: 列数 %q 无效", ErrInvalidInstance, fields[1])
	}

	// 读取数据
	matrix := make([][]float64, 0, rows)
	for len(matrix) < rows {
		line, err := nextLine(scanner)
		if err != nil {
			return nil, err
		}
		if line == "" {
			return nil, fmt.Errorf("%w: 期望 %d 行数据，只读到 %d 行", ErrInvalidInstance, rows, len(matrix))
		}

		values := strings.Split(line, "\t")
		if len(values) != cols {
			return nil, fmt.Errorf("%w: 第 %d 行有 %d 列，期望 %d 列", ErrInvalidInstance, len(matrix)+1, len(values), cols)
		}

		row := make([]float64, cols)
		for i, value := range values {
			v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: 第 %d 行第 %d 列 %q 不是数字", ErrInvalidInstance, len(matrix)+1, i+1, value)
			}
			row[i] = v
		}
		matrix = append(matrix, row)
	}

	return matrix, nil
}

// nextLine 跳过空行，读到文件末尾时返回空字符串
func nextLine(scanner *bufio.Scanner) (string, error) {
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		return line, nil
	}
	return "", scanner.Err()
}

// WriteMatrix 以实例文件格式写出估值矩阵
func WriteMatrix(w io.Writer, matrix [][]float64) error {
	if len(matrix) == 0 || len(matrix[0]) == 0 {
		return fmt.Errorf("%w: 估值矩阵为空", ErrInvalidInstance)
	}

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%d %d\n", len(matrix), len(matrix[0])); err != nil {
		return err
	}

	for i, row := range matrix {
		if len(row) != len(matrix[0]) {
			return fmt.Errorf("%w: 第 %d 行有 %d 列，期望 %d 列", ErrInvalidInstance, i+1, len(row), len(matrix[0]))
		}
		values := make([]string, len(row))
		for j, v := range row {
			values[j] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		if _, err := bw.WriteString(strings.Join(values, "\t") + "\n"); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// ReadInstanceFile 读取实例文件并构造实例
func ReadInstanceFile(path string) (*Instance, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	matrix, err := ReadMatrix(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return NewInstance(matrix)
}

// WriteInstanceFile 将估值矩阵写入文件
func WriteInstanceFile(path string, matrix [][]float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := WriteMatrix(file, matrix); err != nil {
		_ = file.Close()
		return err
	}

	return file.Close()
}
